package main

import (
	"context"
	"log/slog"

	"arena-crawler/cmd/arena-crawler/commands"
	"arena-crawler/lib/osutil"
	"arena-crawler/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)

	ctx := osutil.SignalContext()
	tel, err := telemetry.SetupFromEnv(ctx, "arena-crawler")
	if err != nil {
		slog.Warn("telemetry setup failed", "err", err)
	}
	defer tel.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
