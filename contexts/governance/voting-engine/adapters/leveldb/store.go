package leveldb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbOpt "github.com/syndtr/goleveldb/leveldb/opt"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/ports"
)

// Store keeps governance state in goleveldb. An empty path opens a memory
// backed database.
type Store struct {
	db     *leveldb.DB
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	value, found, err := get(s.db, key)
	if err != nil {
		s.logError("governance_leveldb_get_failed", err, "key", key)
		return nil, false, domainerrors.Storage("leveldb get", err)
	}
	return value, found, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		s.logError("governance_leveldb_put_failed", err, "key", key)
		return domainerrors.Storage("leveldb put", err)
	}
	return nil
}

// Update holds an exclusive leveldb transaction for the duration of fn.
// Writes made by fn are committed together or discarded together.
func (s *Store) Update(ctx context.Context, fn func(tx ports.KVTxn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	transaction, err := s.db.OpenTransaction()
	if err != nil {
		s.logError("governance_leveldb_open_transaction_failed", err)
		return domainerrors.Storage("leveldb open transaction", err)
	}
	if err := fn(&levelTxn{tx: transaction}); err != nil {
		transaction.Discard()
		return err
	}
	if err := transaction.Commit(); err != nil {
		transaction.Discard()
		s.logError("governance_leveldb_commit_failed", err)
		return domainerrors.Storage("leveldb commit", err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, prefix string) ([]ports.KVEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	out := make([]ports.KVEntry, 0)
	for iter.Next() {
		key := append([]byte{}, iter.Key()...)
		value := append([]byte{}, iter.Value()...)
		out = append(out, ports.KVEntry{Key: string(key), Value: value})
	}
	if err := iter.Error(); err != nil {
		s.logError("governance_leveldb_scan_failed", err, "prefix", prefix)
		return nil, domainerrors.Storage("leveldb scan", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) logError(event string, err error, attrs ...any) {
	if s.logger == nil || err == nil {
		return
	}
	base := []any{
		"event", event,
		"module", "governance/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	}
	s.logger.Error("governance leveldb operation failed", append(base, attrs...)...)
}

type reader interface {
	Get(key []byte, ro *leveldbOpt.ReadOptions) ([]byte, error)
}

type levelTxn struct {
	tx *leveldb.Transaction
}

func (t *levelTxn) Get(key string) ([]byte, bool, error) {
	return get(t.tx, key)
}

func (t *levelTxn) Put(key string, value []byte) error {
	return t.tx.Put([]byte(key), value, nil)
}

func (t *levelTxn) Delete(key string) error {
	return t.tx.Delete([]byte(key), nil)
}

func get(r reader, key string) ([]byte, bool, error) {
	value, err := r.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

var _ ports.KVStore = (*Store)(nil)
