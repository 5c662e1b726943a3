package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	votingengine "governance/contexts/governance/voting-engine"
	"governance/contexts/governance/voting-engine/application/commands"
	"governance/contexts/governance/voting-engine/application/workers"
	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/ports"
	"governance/internal/platform/config"
	"governance/internal/platform/httpserver"
	"governance/internal/platform/kv"
	"governance/internal/platform/messaging"
	"governance/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type runtime struct {
	store        ports.KVStore
	bus          *messaging.Bus
	module       votingengine.Module
	consumer     workers.EventMetricsConsumer
	registry     *prometheus.Registry
	pollInterval time.Duration
	logger       *slog.Logger
}

type APIApp struct {
	runtime
	server     *httpserver.Server
	embedRelay bool
}

type WorkerApp struct {
	runtime
}

func build(ctx context.Context, cfg config.Config, logger *slog.Logger, process string) (runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", process)

	store, err := kv.Open(ctx, cfg.Store, logger)
	if err != nil {
		return runtime{}, err
	}

	var (
		registry *prometheus.Registry
		observer ports.Metrics
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observer = metrics.New(registry)
	}

	bus := messaging.NewBus(0, logger)
	module := votingengine.NewModule(votingengine.Dependencies{
		Store:          store,
		Clock:          kv.SystemClock{},
		IDGen:          kv.UUIDGenerator{},
		Metrics:        observer,
		Publisher:      bus,
		RelayBatchSize: cfg.Outbox.BatchSize,
		Logger:         logger,
	})

	if err := seed(ctx, module.Governance, cfg.Bootstrap, logger); err != nil {
		_ = store.Close()
		return runtime{}, err
	}
	if observer != nil {
		stats, err := module.Queries.GetStats(ctx)
		if err != nil {
			_ = store.Close()
			return runtime{}, err
		}
		observer.ObserveStats(stats)
	}

	return runtime{
		store:  store,
		bus:    bus,
		module: module,
		consumer: workers.EventMetricsConsumer{
			Subscriber: bus,
			Metrics:    observer,
			Logger:     logger,
		},
		registry:     registry,
		pollInterval: cfg.Outbox.PollInterval,
		logger:       logger,
	}, nil
}

// seed instantiates governance from config on first start. A store that is
// already instantiated is left untouched.
func seed(ctx context.Context, governance commands.GovernanceUseCase, cfg config.BootstrapConfig, logger *slog.Logger) error {
	owner := entities.NormalizePrincipal(cfg.Owner)
	if owner.IsZero() {
		return nil
	}
	admins := make([]entities.Principal, 0, len(cfg.Admins))
	for _, admin := range cfg.Admins {
		admins = append(admins, entities.NormalizePrincipal(admin))
	}

	_, err := governance.Instantiate(ctx, commands.InstantiateCommand{
		Sender: owner,
		Admins: admins,
	})
	if errors.Is(err, domainerrors.ErrAlreadyInstantiated) {
		logger.Info("governance already instantiated",
			"event", "bootstrap_seed_skipped",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"owner", owner.String(),
		)
		return nil
	}
	return err
}

func BuildAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	rt, err := build(ctx, cfg, logger, "api")
	if err != nil {
		return nil, err
	}
	var gatherer prometheus.Gatherer
	if rt.registry != nil {
		gatherer = rt.registry
	}
	return &APIApp{
		runtime:    rt,
		server:     httpserver.New(rt.module, gatherer, rt.logger, cfg.HTTPAddr),
		embedRelay: cfg.Outbox.Embedded,
	}, nil
}

func BuildWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*WorkerApp, error) {
	rt, err := build(ctx, cfg, logger, "worker")
	if err != nil {
		return nil, err
	}
	return &WorkerApp{runtime: rt}, nil
}

// Run serves HTTP and, when embedded, drains the outbox in the same process.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"embedded_relay", a.embedRelay,
	)

	g, gctx := errgroup.WithContext(ctx)
	if a.embedRelay {
		if err := a.startRelay(gctx, g); err != nil {
			return err
		}
	}
	g.Go(func() error {
		return a.server.Run(gctx)
	})
	err := g.Wait()
	a.bus.Wait()
	return err
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	g, gctx := errgroup.WithContext(ctx)
	if err := w.startRelay(gctx, g); err != nil {
		return err
	}
	err := g.Wait()
	w.bus.Wait()
	return err
}

func (rt runtime) startRelay(ctx context.Context, g *errgroup.Group) error {
	if err := rt.consumer.Start(ctx); err != nil {
		return err
	}
	g.Go(func() error {
		return rt.module.Relay.Run(ctx, rt.pollInterval)
	})
	return nil
}

func (rt runtime) Close() error {
	if rt.store != nil {
		return rt.store.Close()
	}
	return nil
}

// Module exposes the wired governance module.
func (rt runtime) Module() votingengine.Module {
	return rt.module
}
