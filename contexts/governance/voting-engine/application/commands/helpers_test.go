package commands_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"governance/contexts/governance/voting-engine/adapters/memory"
	"governance/contexts/governance/voting-engine/application/commands"
	"governance/contexts/governance/voting-engine/application/queries"
	"governance/contexts/governance/voting-engine/application/registry"
	"governance/contexts/governance/voting-engine/domain/entities"
	"governance/contexts/governance/voting-engine/ports"
)

const (
	owner    entities.Principal = "owner"
	admin    entities.Principal = "admin"
	voterA   entities.Principal = "voter-a"
	voterB   entities.Principal = "voter-b"
	stranger entities.Principal = "stranger"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type sequenceIDs struct {
	next int
}

func (s *sequenceIDs) NewID(context.Context) (string, error) {
	s.next++
	return fmt.Sprintf("evt-%04d", s.next), nil
}

type recordingMetrics struct {
	transitions map[string]int
	stats       []entities.Stats
}

func (m *recordingMetrics) ObserveTransition(operation string, outcome string, _ time.Duration) {
	if m.transitions == nil {
		m.transitions = make(map[string]int)
	}
	m.transitions[operation+":"+outcome]++
}

func (m *recordingMetrics) ObserveStats(stats entities.Stats) {
	m.stats = append(m.stats, stats)
}

func (m *recordingMetrics) ObserveEvent(string) {}

type fixture struct {
	store   *memory.Store
	uc      commands.GovernanceUseCase
	queries queries.GovernanceQueries
	metrics *recordingMetrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	metrics := &recordingMetrics{}
	return fixture{
		store: store,
		uc: commands.GovernanceUseCase{
			Store:   store,
			Clock:   fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
			IDGen:   &sequenceIDs{},
			Metrics: metrics,
		},
		queries: queries.GovernanceQueries{Store: store},
		metrics: metrics,
	}
}

// newInstantiatedFixture returns a fixture whose config has owner and one admin.
func newInstantiatedFixture(t *testing.T) fixture {
	t.Helper()
	f := newFixture(t)
	_, err := f.uc.Instantiate(context.Background(), commands.InstantiateCommand{
		Sender: owner,
		Admins: []entities.Principal{admin},
	})
	require.NoError(t, err)
	return f
}

func (f fixture) createVote(t *testing.T, title string, rule entities.VoteRule) entities.VoteRecord {
	t.Helper()
	record, err := f.uc.CreateVote(context.Background(), commands.CreateVoteCommand{
		Sender: admin,
		Title:  title,
		Rule:   rule,
	})
	require.NoError(t, err)
	return record
}

func (f fixture) ballot(title string, voter entities.Principal, choice entities.Choice, funds entities.Funds) error {
	_, err := f.uc.CastBallot(context.Background(), commands.CastBallotCommand{
		Sender: voter,
		Title:  title,
		Choice: choice,
		Funds:  funds,
	})
	return err
}

func (f fixture) stats(t *testing.T) entities.Stats {
	t.Helper()
	stats, err := f.queries.GetStats(context.Background())
	require.NoError(t, err)
	return stats
}

func (f fixture) vote(t *testing.T, title string) entities.VoteRecord {
	t.Helper()
	record, found, err := f.queries.GetVote(context.Background(), title)
	require.NoError(t, err)
	require.True(t, found, "vote %s", title)
	return record
}

func (f fixture) outboxTypes(t *testing.T) []string {
	t.Helper()
	rows, err := registry.Reader{Store: f.store}.PendingOutbox(context.Background(), 0)
	require.NoError(t, err)
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Event.EventType)
	}
	return out
}

var _ ports.Clock = fixedClock{}
