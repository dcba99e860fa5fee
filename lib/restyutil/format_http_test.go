package restyutil

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactForm(t *testing.T) {
	redacted := RedactForm("lt=LT-1&username=alice&password=secret")
	values, err := url.ParseQuery(redacted)
	require.NoError(t, err)
	require.Equal(t, "LT-1", values.Get("lt"))
	require.Equal(t, "alice", values.Get("username"))
	require.Equal(t, "<REDACTED>", values.Get("password"))

	require.Equal(t, "kksj=2018-2019-1", RedactForm("kksj=2018-2019-1"))
	require.Equal(t, "%zz", RedactForm("%zz"))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "resty")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	out.Write("1", "---- REQUEST ----")
	contents, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	require.Equal(t, "---- REQUEST ----", string(contents))
}
