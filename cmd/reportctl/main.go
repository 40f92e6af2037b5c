package main

// Operator CLI:
//   go run ./cmd/reportctl migrate up
//   go run ./cmd/reportctl templates import templates/profile_report.yaml --activate
//   go run ./cmd/reportctl token --user <id>

import (
	"fmt"
	"os"

	"profile-report/internal/shared/config"
	"profile-report/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	if err := telemetry.Init(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry init: %v\n", err)
	}

	cmd := newRootCmd(newCLI(cfg))
	err := cmd.Execute()
	telemetry.Sync()
	if err != nil {
		os.Exit(1)
	}
}
