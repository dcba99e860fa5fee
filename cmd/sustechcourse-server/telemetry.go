package main

import (
	"context"
	"log/slog"
	"sustechcourse-backend/lib/restyutil"
	"sustechcourse-backend/lib/scrapers/sustech"
	"sustechcourse-backend/lib/serviceutil"
	"sustechcourse-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "sustechcourse-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	out, err := restyutil.NewFilesystemOutput("<dev_state>/resty/sustech")
	if err != nil {
		slog.Warn("failed to create resty output, http dumps are disabled", "err", err)
		return
	}
	sustech.SetRestyInstrumentOutput(out)
}
