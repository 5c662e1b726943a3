package workers

import (
	"context"
	"log/slog"
	"time"

	application "governance/contexts/governance/voting-engine/application"
	"governance/contexts/governance/voting-engine/application/registry"
	"governance/contexts/governance/voting-engine/ports"
)

const defaultRelayBatchSize = 100

// OutboxRelay publishes pending outbox rows to the event bus and removes each
// row once its publish succeeded.
type OutboxRelay struct {
	Store     ports.KVStore
	Publisher ports.EventPublisher
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce relays a bounded batch in key order. It stops on the first failure
// so the next cycle retries from the same row; delivery is at-least-once.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultRelayBatchSize
	}

	pending, err := registry.Reader{Store: r.Store}.PendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("governance outbox list failed",
			"event", "governance_outbox_list_failed",
			"module", "governance/voting-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		logger.Debug("governance outbox relay found no pending rows",
			"event", "governance_outbox_relay_noop",
			"module", "governance/voting-engine",
			"layer", "worker",
			"batch_size", limit,
		)
		return 0, nil
	}

	published := 0
	for _, row := range pending {
		if err := r.Publisher.Publish(ctx, row.Event.EventType, row.Event); err != nil {
			logger.Error("governance outbox publish failed",
				"event", "governance_outbox_publish_failed",
				"module", "governance/voting-engine",
				"layer", "worker",
				"outbox_key", row.Key,
				"event_id", row.Event.EventID,
				"event_type", row.Event.EventType,
				"error", err.Error(),
			)
			return published, err
		}
		key := row.Key
		if err := r.Store.Update(ctx, func(txn ports.KVTxn) error {
			return registry.Wrap(txn).DeleteOutbox(key)
		}); err != nil {
			logger.Error("governance outbox delete failed",
				"event", "governance_outbox_delete_failed",
				"module", "governance/voting-engine",
				"layer", "worker",
				"outbox_key", row.Key,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	logger.Info("governance outbox relay cycle completed",
		"event", "governance_outbox_relay_completed",
		"module", "governance/voting-engine",
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}

// Run polls until ctx is done. Cycle failures are logged by RunOnce and
// retried on the next tick.
func (r OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		_, _ = r.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
