package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/ports"
)

// Store keeps governance state in badger. Without a data dir the database is
// in-memory and nothing survives Close.
type Store struct {
	db      *badger.DB
	dataDir string
	logger  *slog.Logger
}

type OptionFunc func(*Store)

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithDataDir(dataDir string) OptionFunc {
	return func(s *Store) {
		s.dataDir = dataDir
	}
}

func New(opts ...OptionFunc) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var badgerOpts badger.Options
	if s.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if _, err := os.Stat(s.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(filepath.Join(s.dataDir, "governance"))
	}
	badgerOpts = badgerOpts.
		WithLogger(newBadgerLogger(s.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	s.db = db
	return s, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var (
		value []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		value, found, err = get(txn, key)
		return err
	})
	if err != nil {
		s.logError("governance_badger_get_failed", err, "key", key)
		return nil, false, domainerrors.Storage("badger get", err)
	}
	return value, found, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		s.logError("governance_badger_put_failed", err, "key", key)
		return domainerrors.Storage("badger put", err)
	}
	return nil
}

// Update runs fn inside a badger read-write transaction. Errors from fn are
// returned as-is; commit failures such as badger.ErrConflict are storage
// failures.
func (s *Store) Update(ctx context.Context, fn func(tx ports.KVTxn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var fnErr error
	err := s.db.Update(func(txn *badger.Txn) error {
		fnErr = fn(&badgerTxn{txn: txn})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		s.logError("governance_badger_update_failed", err)
		return domainerrors.Storage("badger update", err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, prefix string) ([]ports.KVEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ports.KVEntry, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, ports.KVEntry{Key: string(item.KeyCopy(nil)), Value: value})
		}
		return nil
	})
	if err != nil {
		s.logError("governance_badger_scan_failed", err, "prefix", prefix)
		return nil, domainerrors.Storage("badger scan", err)
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
	s.logger.Error("governance badger operation failed", append(base, attrs...)...)
}

type badgerTxn struct {
	txn *badger.Txn
}

func (t *badgerTxn) Get(key string) ([]byte, bool, error) {
	return get(t.txn, key)
}

func (t *badgerTxn) Put(key string, value []byte) error {
	return t.txn.Set([]byte(key), value)
}

func (t *badgerTxn) Delete(key string) error {
	return t.txn.Delete([]byte(key))
}

func get(txn *badger.Txn, key string) ([]byte, bool, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

var _ ports.KVStore = (*Store)(nil)
