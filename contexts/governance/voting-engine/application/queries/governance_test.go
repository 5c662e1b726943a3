package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"governance/contexts/governance/voting-engine/adapters/memory"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
)

func TestQueriesBeforeInstantiate(t *testing.T) {
	q := GovernanceQueries{Store: memory.NewStore()}
	ctx := context.Background()

	_, err := q.GetConfig(ctx)
	require.ErrorIs(t, err, domainerrors.ErrNotInstantiated)

	stats, err := q.GetStats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Open())

	titles, err := q.ListVoteTitles(ctx)
	require.NoError(t, err)
	require.Empty(t, titles)

	_, found, err := q.GetVote(ctx, "q1")
	require.NoError(t, err)
	require.False(t, found)

	_, err = q.HasVoted(ctx, "q1", "a")
	require.ErrorIs(t, err, domainerrors.ErrCannotFindVote)
}

func TestQueriesReadStoredState(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "config", []byte(`{"owner":"o","admins":["a"],"vote_titles":["q1"]}`)))
	require.NoError(t, store.Put(ctx, "stats", []byte(`{"in_progress":1}`)))
	require.NoError(t, store.Put(ctx, "votes/q1", []byte(`{"title":"q1","already_voted":["v"],"tally":{"for":1}}`)))
	q := GovernanceQueries{Store: store}

	cfg, err := q.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, "o", cfg.Owner.String())

	titles, err := q.ListVoteTitles(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"q1"}, titles)

	record, found, err := q.GetVote(ctx, " q1 ")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), record.Tally.For)

	voted, err := q.HasVoted(ctx, "q1", "v")
	require.NoError(t, err)
	require.True(t, voted)
	voted, err = q.HasVoted(ctx, "q1", "w")
	require.NoError(t, err)
	require.False(t, voted)
}

func TestCorruptRecordIsStorageFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "votes/q1", []byte(`{not json`)))

	_, _, err := GovernanceQueries{Store: store}.GetVote(ctx, "q1")
	require.ErrorIs(t, err, domainerrors.ErrCorruptRecord)
	require.ErrorIs(t, err, domainerrors.ErrStorageFailure)
}
