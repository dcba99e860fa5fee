package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	devenv "sustechcourse-backend/dev/env"
)

const sustechConfigTemplate = `{
  // credentials of a real SUSTech account, only used by the live tests
  username: "",
  password: "",
  // leave empty to use the real portal
  cas_base_url: "",
  portal_base_url: "",
  // a term the account has grades in, ex. "2018-1"
  term: "",
}
`

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	path := filepath.Join("dev", ".state", "sustech_config.json5")
	created, err := devenv.WriteTemplate(path, []byte(sustechConfigTemplate))
	if err != nil {
		return err
	}
	if created {
		slog.Info("fill in the live test credentials", "path", path)
	} else {
		slog.Info("live test credentials already exist", "path", path)
	}
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
