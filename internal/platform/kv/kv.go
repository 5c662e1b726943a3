// Package kv opens the configured state backend behind ports.KVStore.
package kv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	badgeradapter "governance/contexts/governance/voting-engine/adapters/badger"
	leveldbadapter "governance/contexts/governance/voting-engine/adapters/leveldb"
	"governance/contexts/governance/voting-engine/adapters/memory"
	postgresadapter "governance/contexts/governance/voting-engine/adapters/postgres"
	"governance/contexts/governance/voting-engine/ports"
	"governance/internal/platform/config"
	"governance/internal/platform/db"
)

// Open returns a ready store for cfg.Backend. Relational backends are
// migrated before they are returned.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (ports.KVStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", config.BackendMemory:
		return memory.NewStore(), nil
	case config.BackendBadger:
		return badgeradapter.New(
			badgeradapter.WithDataDir(cfg.DataDir),
			badgeradapter.WithLogger(logger),
		)
	case config.BackendLevelDB:
		return leveldbadapter.Open(cfg.DataDir, logger)
	case config.BackendPostgres:
		database, err := db.ConnectPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, postgresadapter.NewStore(database.DB, logger))
	case config.BackendSQLite:
		database, err := db.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, postgresadapter.NewStore(database.DB, logger))
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func migrated(ctx context.Context, store *postgresadapter.Store) (ports.KVStore, error) {
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues random event ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var (
	_ ports.Clock       = SystemClock{}
	_ ports.IDGenerator = UUIDGenerator{}
)
