package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"governance/contexts/governance/voting-engine/adapters/memory"
	"governance/contexts/governance/voting-engine/application/registry"
	"governance/contexts/governance/voting-engine/domain/entities"
	"governance/contexts/governance/voting-engine/ports"
	contractsv1 "governance/contracts/gen/events/v1"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.EventEnvelope
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic == p.failOn {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func seedOutbox(t *testing.T, store ports.KVStore, types ...string) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), func(txn ports.KVTxn) error {
		tx := registry.Wrap(txn)
		for i, eventType := range types {
			if err := tx.AppendOutbox(ports.EventEnvelope{
				EventID:    eventType,
				EventType:  eventType,
				OccurredAt: time.Unix(int64(i+1), 0),
			}); err != nil {
				return err
			}
		}
		return nil
	}))
}

func pending(t *testing.T, store ports.KVStore) int {
	t.Helper()
	rows, err := registry.Reader{Store: store}.PendingOutbox(context.Background(), 0)
	require.NoError(t, err)
	return len(rows)
}

func TestOutboxRelayPublishesAndDeletes(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, contractsv1.EventVoteCreated, contractsv1.EventBallotCast, contractsv1.EventVotePaused)
	publisher := &recordingPublisher{}
	relay := OutboxRelay{Store: store, Publisher: publisher, BatchSize: 2}

	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, published)
	require.Equal(t, 1, pending(t, store))

	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, published)
	require.Equal(t, 0, pending(t, store))

	require.Len(t, publisher.events, 3)
	require.Equal(t, contractsv1.EventVoteCreated, publisher.events[0].EventType)
	require.Equal(t, contractsv1.EventVotePaused, publisher.events[2].EventType)
}

func TestOutboxRelayStopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, contractsv1.EventVoteCreated, contractsv1.EventBallotCast, contractsv1.EventVotePaused)
	publisher := &recordingPublisher{failOn: contractsv1.EventBallotCast}

	published, err := OutboxRelay{Store: store, Publisher: publisher}.RunOnce(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, published)
	require.Equal(t, 2, pending(t, store))
}

func TestOutboxRelayRunStopsWithContext(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, contractsv1.EventVoteCreated)
	publisher := &recordingPublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- OutboxRelay{Store: store, Publisher: publisher}.Run(ctx, 10*time.Millisecond)
	}()
	require.Eventually(t, func() bool {
		return pending(t, store) == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

type fakeBus struct {
	mu       sync.Mutex
	handlers map[string]func(context.Context, ports.EventEnvelope) error
}

func (b *fakeBus) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[string]func(context.Context, ports.EventEnvelope) error)
	}
	b.handlers[topic] = handler
	return nil
}

type countingMetrics struct {
	events map[string]int
}

func (m *countingMetrics) ObserveTransition(string, string, time.Duration) {}
func (m *countingMetrics) ObserveStats(entities.Stats)                     {}
func (m *countingMetrics) ObserveEvent(eventType string) {
	if m.events == nil {
		m.events = make(map[string]int)
	}
	m.events[eventType]++
}

func TestEventMetricsConsumerCountsByType(t *testing.T) {
	bus := &fakeBus{}
	metrics := &countingMetrics{}
	consumer := EventMetricsConsumer{Subscriber: bus, Metrics: metrics}
	require.NoError(t, consumer.Start(context.Background()))
	require.Len(t, bus.handlers, len(EventTopics))

	handler := bus.handlers[contractsv1.EventBallotCast]
	require.NoError(t, handler(context.Background(), ports.EventEnvelope{EventType: contractsv1.EventBallotCast}))
	require.NoError(t, handler(context.Background(), ports.EventEnvelope{EventType: contractsv1.EventBallotCast}))
	require.Equal(t, 2, metrics.events[contractsv1.EventBallotCast])
}
