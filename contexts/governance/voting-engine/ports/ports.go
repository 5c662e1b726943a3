package ports

import (
	"context"
	"time"

	"governance/contexts/governance/voting-engine/domain/entities"
	contractsv1 "governance/contracts/gen/events/v1"
)

// KVStore is the storage collaborator. Keys are namespaced strings
// ("config", "stats", "votes/<title>", "outbox/<id>"); values are opaque bytes.
//
// Update runs fn against a transaction and applies every write made through it
// as one unit. When fn returns an error, no write is applied and the error is
// returned unchanged. Adapters wrap their own failures with ErrStorageFailure.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, fn func(tx KVTxn) error) error
	// Scan returns every entry whose key starts with prefix, ordered by key.
	Scan(ctx context.Context, prefix string) ([]KVEntry, error)
	Close() error
}

// KVTxn is the view handed to KVStore.Update. Reads observe the
// transaction's own writes.
type KVTxn interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

type KVEntry struct {
	Key   string
	Value []byte
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

// EventPublisher delivers relayed outbox events to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a consumer for a topic.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// Metrics observes transitions. A nil Metrics is valid and records nothing.
type Metrics interface {
	ObserveTransition(operation string, outcome string, duration time.Duration)
	ObserveStats(stats entities.Stats)
	ObserveEvent(eventType string)
}
