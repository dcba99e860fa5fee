package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPassthrough(t *testing.T) {
	path, err := ResolvePath(".dev/resty/sustech")
	require.NoError(t, err)
	require.Equal(t, ".dev/resty/sustech", path)
}

func TestResolvePathDevState(t *testing.T) {
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	path, err := ResolvePath("<dev_state>/resty/sustech")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "resty", "sustech"), path)

	_, err = os.Stat(filepath.Join(root, "dev", ".state"))
	require.NoError(t, err)
}

func TestIsWorkspaceRoot(t *testing.T) {
	dir := t.TempDir()
	require.False(t, isWorkspaceRoot(dir))

	err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module other\n"), 0600)
	require.NoError(t, err)
	require.False(t, isWorkspaceRoot(dir))

	err = os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module sustechcourse-backend\n\ngo 1.23.0\n"), 0600)
	require.NoError(t, err)
	require.True(t, isWorkspaceRoot(dir))
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sustech_config.json5")

	created, err := WriteTemplate(path, []byte(`{ username: "" }`))
	require.NoError(t, err)
	require.True(t, created)

	created, err = WriteTemplate(path, []byte(`{ username: "overwritten" }`))
	require.NoError(t, err)
	require.False(t, created)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{ username: "" }`, string(contents))
}
