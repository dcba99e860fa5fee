package main

import (
	"os"
	"sustechcourse-backend/lib/configutil"
	"sustechcourse-backend/lib/scrapers/sustech"
	"time"
)

const defaultListen = "127.0.0.1:8000"

type Config struct {
	// HTTP_BIND overrides it when set
	Listen                string         `json:"listen"`
	AccessToken           string         `json:"access_token"`
	RequestTimeoutSeconds int            `json:"request_timeout_seconds"`
	Portal                sustech.Config `json:"portal"`
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ReadConfig reads config.json5 from the working directory, a missing file
// gives the defaults.
func ReadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	bind := os.Getenv("HTTP_BIND")
	if bind != "" {
		cfg.Listen = bind
	}
	return cfg, nil
}
