// Package metrics exports governance transitions and statistics to prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"governance/contexts/governance/voting-engine/domain/entities"
	"governance/contexts/governance/voting-engine/ports"
)

type Prometheus struct {
	transitions        *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec
	votes              *prometheus.GaugeVec
	events             *prometheus.CounterVec
}

func New(registry prometheus.Registerer) *Prometheus {
	factory := promauto.With(registry)
	return &Prometheus{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_transitions_total",
			Help: "state transitions by operation and outcome",
		}, []string{"operation", "outcome"}),
		transitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "governance_transition_duration_seconds",
			Help:    "time spent committing a state transition",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"operation"}),
		votes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "governance_votes",
			Help: "votes by lifecycle state",
		}, []string{"state"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_events_consumed_total",
			Help: "relayed events seen by the metrics consumer",
		}, []string{"event_type"}),
	}
}

func (p *Prometheus) ObserveTransition(operation string, outcome string, duration time.Duration) {
	p.transitions.WithLabelValues(operation, outcome).Inc()
	p.transitionDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveStats(stats entities.Stats) {
	p.votes.WithLabelValues("in_progress").Set(float64(stats.InProgress))
	p.votes.WithLabelValues("paused").Set(float64(stats.Paused))
	p.votes.WithLabelValues("accepted").Set(float64(stats.Accepted))
	p.votes.WithLabelValues("rejected").Set(float64(stats.Rejected))
}

func (p *Prometheus) ObserveEvent(eventType string) {
	p.events.WithLabelValues(eventType).Inc()
}

var _ ports.Metrics = (*Prometheus)(nil)
