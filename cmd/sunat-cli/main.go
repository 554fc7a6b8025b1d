package main

import (
	"context"

	"sunatscraper/cmd/sunat-cli/commands"
	"sunatscraper/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "sunat-cli")
	commands.ExecuteContext(context.Background())
}
