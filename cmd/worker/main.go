package main

import (
	"context"
	"log/slog"

	"governance/internal/app/bootstrap"
	"governance/internal/app/cli"
	"governance/internal/platform/config"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Relay outbox events and run the event consumers.
func main() {
	cli.Execute(cli.NewRootCommand("governance-worker", "Governance outbox worker", run))
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := bootstrap.BuildWorker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("worker shutdown close failed", "error", err.Error())
		}
	}()
	return app.Run(ctx)
}
