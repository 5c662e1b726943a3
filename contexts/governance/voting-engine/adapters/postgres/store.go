package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store keeps governance state as key/value rows in a single gorm table. It
// runs against postgres in production and against sqlite in tests and local
// development.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the state table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&stateModel{}); err != nil {
		return domainerrors.Storage("postgres migrate", s.logError("governance_store_migrate_failed", err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := getRow(s.db.WithContext(ctx), key, false)
	if err != nil {
		return nil, false, domainerrors.Storage("postgres get", s.logError("governance_store_get_failed", err, "key", key))
	}
	return value, found, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := putRow(s.db.WithContext(ctx), key, value); err != nil {
		return domainerrors.Storage("postgres put", s.logError("governance_store_put_failed", err, "key", key))
	}
	return nil
}

// Update runs fn inside one database transaction. On postgres every read
// inside the transaction takes a row lock so concurrent transitions over the
// same key serialize.
func (s *Store) Update(ctx context.Context, fn func(tx ports.KVTxn) error) error {
	lock := s.db.Dialector.Name() == "postgres"
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&gormTxn{db: tx, lock: lock})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return domainerrors.Storage("postgres update", s.logError("governance_store_update_failed", err,
			"retryable", isRetryable(err),
		))
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, prefix string) ([]ports.KVEntry, error) {
	var rows []stateModel
	err := s.db.WithContext(ctx).
		Where("state_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Find(&rows).
		Error
	if err != nil {
		return nil, domainerrors.Storage("postgres scan", s.logError("governance_store_scan_failed", err, "prefix", prefix))
	}
	// Collations differ between databases; order by raw bytes here.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Key < rows[j].Key
	})
	out := make([]ports.KVEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.KVEntry{Key: row.Key, Value: row.Value})
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("governance store operation failed", fields...)
	return err
}

type gormTxn struct {
	db   *gorm.DB
	lock bool
}

func (t *gormTxn) Get(key string) ([]byte, bool, error) {
	return getRow(t.db, key, t.lock)
}

func (t *gormTxn) Put(key string, value []byte) error {
	return putRow(t.db, key, value)
}

func (t *gormTxn) Delete(key string) error {
	return t.db.Where("state_key = ?", key).Delete(&stateModel{}).Error
}

func getRow(db *gorm.DB, key string, lock bool) ([]byte, bool, error) {
	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row stateModel
	err := query.Where("state_key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row.Value, true, nil
}

func putRow(db *gorm.DB, key string, value []byte) error {
	row := stateModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"state_value": row.Value,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row).Error
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// isRetryable reports postgres serialization failures and deadlocks. The
// store never retries; the flag only reaches the log line.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

type stateModel struct {
	Key       string    `gorm:"column:state_key;primaryKey"`
	Value     []byte    `gorm:"column:state_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stateModel) TableName() string {
	return "governance_state"
}

var _ ports.KVStore = (*Store)(nil)
