package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"governance/contexts/governance/voting-engine/adapters/memory"
	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/ports"
)

func TestCreateVoteRegistersTitleAtomically(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	cfg := entities.GlobalConfig{Owner: "o", VoteTitles: []string{}}

	err := store.Update(ctx, func(txn ports.KVTxn) error {
		tx := Wrap(txn)
		if err := tx.PutConfig(cfg); err != nil {
			return err
		}
		next, err := tx.CreateVote(cfg, entities.VoteRecord{Title: "q1"})
		if err != nil {
			return err
		}
		require.Equal(t, []string{"q1"}, next.VoteTitles)
		_, err = tx.CreateVote(next, entities.VoteRecord{Title: "q1"})
		require.ErrorIs(t, err, domainerrors.ErrVoteAlreadyExists)
		return nil
	})
	require.NoError(t, err)

	stored, found, err := Reader{Store: store}.Config(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"q1"}, stored.VoteTitles)
}

func TestCreateVoteRollsBackOnLaterFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Update(ctx, func(txn ports.KVTxn) error {
		tx := Wrap(txn)
		if _, err := tx.CreateVote(entities.GlobalConfig{}, entities.VoteRecord{Title: "q1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, found, err := Reader{Store: store}.Vote(ctx, "q1")
	require.NoError(t, err)
	require.False(t, found)
	_, found, err = Reader{Store: store}.Config(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestUpdateVote(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.Update(ctx, func(txn ports.KVTxn) error {
		_, _, err := Wrap(txn).UpdateVote("missing", func(r entities.VoteRecord) (entities.VoteRecord, bool, error) {
			t.Fatal("transform must not run for a missing record")
			return r, false, nil
		})
		return err
	})
	require.ErrorIs(t, err, domainerrors.ErrCannotFindVote)

	require.NoError(t, store.Update(ctx, func(txn ports.KVTxn) error {
		_, err := Wrap(txn).CreateVote(entities.GlobalConfig{}, entities.VoteRecord{Title: "q1"})
		return err
	}))
	require.NoError(t, store.Update(ctx, func(txn ports.KVTxn) error {
		next, changed, err := Wrap(txn).UpdateVote("q1", func(r entities.VoteRecord) (entities.VoteRecord, bool, error) {
			r.Paused = true
			return r, true, nil
		})
		require.True(t, changed)
		require.True(t, next.Paused)
		return err
	}))
	record, _, err := Reader{Store: store}.Vote(ctx, "q1")
	require.NoError(t, err)
	require.True(t, record.Paused)
}

func TestOutboxKeysSortByTime(t *testing.T) {
	early := OutboxKey(time.Unix(1, 0), "b")
	late := OutboxKey(time.Unix(2, 0), "a")
	require.Less(t, early, late)
	require.Contains(t, early, OutboxPrefix)
}

func TestPendingOutboxRespectsLimit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, func(txn ports.KVTxn) error {
		tx := Wrap(txn)
		for i, id := range []string{"e1", "e2", "e3"} {
			if err := tx.AppendOutbox(ports.EventEnvelope{
				EventID:    id,
				EventType:  "governance.vote.created",
				OccurredAt: time.Unix(int64(i), 0),
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	rows, err := Reader{Store: store}.PendingOutbox(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "e1", rows[0].Event.EventID)
	require.Equal(t, "e2", rows[1].Event.EventID)
}
