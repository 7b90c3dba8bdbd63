package main

import (
	"context"

	"mybest-backend/cmd/mybest-cli/commands"
	"mybest-backend/lib/osutil"
	"mybest-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "mybest-cli")
	telemetry.InitSlog(false)
	defer telemetry.Shutdown(context.Background())

	ctx := osutil.SignalContext()
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
