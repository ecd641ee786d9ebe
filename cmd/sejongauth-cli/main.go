package main

import (
	"context"
	"sejongauth/cmd/sejongauth-cli/commands"
	"sejongauth/lib/telemetry"
)

func main() {
	tel, err := telemetry.SetupFromEnv(context.Background(), "sejongauth-cli")
	if err == nil {
		defer tel.Shutdown(context.Background())
	}
	commands.ExecuteContext(context.Background())
}
