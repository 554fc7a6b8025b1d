package main

import (
	"context"
	"log/slog"
	"os"

	"sunatscraper/lib/restyutil"
	"sunatscraper/lib/serviceutil"
	"sunatscraper/lib/telemetry"
)

// InitTelemetry configures logging and, when a telemetry.json5 is found,
// OTLP export. With verbose set every portal exchange is dumped under
// .dev/resty/sunat.
func InitTelemetry(ctx context.Context, verbose bool) restyutil.InstrumentOutput {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "sunat-server")
	switch {
	case os.IsNotExist(err):
		slog.WarnContext(ctx, "telemetry.json5 not found, otlp export disabled")
	case err != nil:
		serviceutil.Fatal("setup telemetry", err)
	default:
		go func() {
			<-ctx.Done()
			tel.Shutdown(context.Background())
		}()
	}
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return nil
	}
	output, err := restyutil.NewFilesystemOutput(".dev/resty/sunat")
	if err != nil {
		serviceutil.Fatal("create resty dump dir", err)
	}
	return output
}
