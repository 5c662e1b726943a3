// Package cli holds the cobra root shared by the api and worker binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"governance/internal/platform/config"
)

// RunFunc runs a process until ctx is cancelled.
type RunFunc func(ctx context.Context, cfg config.Config, logger *slog.Logger) error

type flags struct {
	debug      bool
	configFile string
}

func NewRootCommand(programName string, short string, run RunFunc) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           programName,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.OutOrStdout(), programName, f.debug)
			cfg, err := config.Load(f.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}
	cmd.PersistentFlags().BoolVarP(&f.debug, "debug", "D", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&f.configFile, "config", "", "path to config file")
	return cmd
}

func newLogger(out io.Writer, programName string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	})).With("component", programName)
	slog.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		logger.Warn("failed to set GOMAXPROCS", "error", err.Error())
	}
	return logger
}

// Execute runs cmd and exits non-zero on failure.
func Execute(cmd *cobra.Command) {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error(err.Error(), "component", cmd.Name())
		os.Exit(1)
	}
}
