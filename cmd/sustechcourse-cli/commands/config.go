package commands

import (
	"errors"
	"fmt"
	"os"
	"sustechcourse-backend/lib/configutil"
	"sustechcourse-backend/lib/scrapers/sustech"
	"sustechcourse-backend/lib/telemetry"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	sustech.Config
}

// readConfig loads the config file and applies the credential flags over
// it, the file may be missing if both flags are given.
func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if username != "" {
		cfg.Username = username
	}
	if password != "" {
		cfg.Password = password
	}
	if cfg.Username == "" || cfg.Password == "" {
		return Config{}, fmt.Errorf("no credentials: set username and password in %s or pass --username and --password", configPath)
	}
	return cfg, nil
}

func newSession(cfg Config) (*sustech.Session, error) {
	opts := cfg.Options()
	opts.Telemetry = telemetry.SlogAPI{}
	return sustech.NewSession(opts)
}
