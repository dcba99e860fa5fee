package main

import (
	"flag"
	"log/slog"
	"sustechcourse-backend/internal/relay"
	"sustechcourse-backend/lib/serviceutil"
	"sustechcourse-backend/lib/telemetry"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the server config.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := ReadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.AccessToken == "" {
		slog.Warn("access_token is not set, the relay accepts unauthenticated requests")
	}

	r := relay.NewRelay(relay.Options{
		Client:         cfg.Portal.Options(),
		RequestTimeout: cfg.RequestTimeout(),
		AccessToken:    cfg.AccessToken,
		Telemetry:      telemetry.SlogAPI{},
	})

	err = serviceutil.StartHttpServer(ctx, cfg.Listen, r.Handler())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
