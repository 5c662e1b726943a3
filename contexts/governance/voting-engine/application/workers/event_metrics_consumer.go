package workers

import (
	"context"
	"log/slog"
	"strings"

	application "governance/contexts/governance/voting-engine/application"
	"governance/contexts/governance/voting-engine/ports"
	contractsv1 "governance/contracts/gen/events/v1"
)

const defaultMetricsConsumerGroup = "governance-event-metrics-cg"

// EventTopics lists every topic the voting engine publishes.
var EventTopics = []string{
	contractsv1.EventGovernanceInstantiated,
	contractsv1.EventVoteCreated,
	contractsv1.EventBallotCast,
	contractsv1.EventVotePaused,
	contractsv1.EventVoteUnpaused,
	contractsv1.EventVoteWhitelistToggled,
	contractsv1.EventVoteCoinGateToggled,
	contractsv1.EventGovernanceAdminsChanged,
}

// EventMetricsConsumer counts relayed events by type.
type EventMetricsConsumer struct {
	Subscriber    ports.EventSubscriber
	Metrics       ports.Metrics
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c EventMetricsConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultMetricsConsumerGroup
	}
	for _, topic := range EventTopics {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handle); err != nil {
			logger.Error("event metrics consumer subscribe failed",
				"event", "governance_event_metrics_subscribe_failed",
				"module", "governance/voting-engine",
				"layer", "worker",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			return err
		}
	}
	logger.Info("event metrics consumer subscriptions active",
		"event", "governance_event_metrics_started",
		"module", "governance/voting-engine",
		"layer", "worker",
		"consumer_group", group,
		"topics", len(EventTopics),
	)
	return nil
}

func (c EventMetricsConsumer) handle(_ context.Context, event ports.EventEnvelope) error {
	if c.Metrics != nil {
		c.Metrics.ObserveEvent(event.EventType)
	}
	application.ResolveLogger(c.Logger).Debug("governance event observed",
		"event", "governance_event_observed",
		"module", "governance/voting-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
	)
	return nil
}
