// Package kvtest holds the behaviour every KVStore adapter must share.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"governance/contexts/governance/voting-engine/ports"
)

var errAbort = errors.New("abort")

// RunStoreSuite runs the conformance tests against stores built by newStore.
// Each subtest gets a fresh store.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) ports.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		store := newStore(t)
		value, found, err := store.Get(ctx, "config")
		require.NoError(t, err)
		require.False(t, found)
		require.Empty(t, value)
	})

	t.Run("put then get", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "config", []byte(`{"owner":"a"}`)))
		require.NoError(t, store.Put(ctx, "config", []byte(`{"owner":"b"}`)))
		value, found, err := store.Get(ctx, "config")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, `{"owner":"b"}`, string(value))
	})

	t.Run("update commits every write", func(t *testing.T) {
		store := newStore(t)
		err := store.Update(ctx, func(tx ports.KVTxn) error {
			if err := tx.Put("stats", []byte("1")); err != nil {
				return err
			}
			return tx.Put("votes/q1", []byte("2"))
		})
		require.NoError(t, err)
		requireValue(t, store, "stats", "1")
		requireValue(t, store, "votes/q1", "2")
	})

	t.Run("failed update discards every write", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "stats", []byte("0")))
		err := store.Update(ctx, func(tx ports.KVTxn) error {
			if err := tx.Put("stats", []byte("1")); err != nil {
				return err
			}
			if err := tx.Put("votes/q1", []byte("2")); err != nil {
				return err
			}
			return errAbort
		})
		require.ErrorIs(t, err, errAbort)
		requireValue(t, store, "stats", "0")
		_, found, err := store.Get(ctx, "votes/q1")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("transaction reads its own writes", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Put(ctx, "outbox/1", []byte("x")))
		err := store.Update(ctx, func(tx ports.KVTxn) error {
			require.NoError(t, tx.Put("stats", []byte("7")))
			value, found, err := tx.Get("stats")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "7", string(value))

			require.NoError(t, tx.Delete("outbox/1"))
			_, found, err = tx.Get("outbox/1")
			require.NoError(t, err)
			require.False(t, found)
			return nil
		})
		require.NoError(t, err)
		_, found, err := store.Get(ctx, "outbox/1")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("scan returns prefix matches in key order", func(t *testing.T) {
		store := newStore(t)
		for _, key := range []string{"votes/b", "outbox/2", "votes/a", "outbox/1", "config"} {
			require.NoError(t, store.Put(ctx, key, []byte(key)))
		}
		entries, err := store.Scan(ctx, "outbox/")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "outbox/1", entries[0].Key)
		require.Equal(t, "outbox/2", entries[1].Key)
		require.Equal(t, "outbox/1", string(entries[0].Value))

		entries, err = store.Scan(ctx, "missing/")
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func requireValue(t *testing.T, store ports.KVStore, key string, want string) {
	t.Helper()
	value, found, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found, "key %s", key)
	require.Equal(t, want, string(value))
}
