package main

import (
	"context"
	"log/slog"

	"governance/internal/app/bootstrap"
	"governance/internal/app/cli"
	"governance/internal/platform/config"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Serve HTTP and, when embedded, relay the outbox.
func main() {
	cli.Execute(cli.NewRootCommand("governance-api", "Governance HTTP API", run))
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := bootstrap.BuildAPI(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("api shutdown close failed", "error", err.Error())
		}
	}()
	return app.Run(ctx)
}
