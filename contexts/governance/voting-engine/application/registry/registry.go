// Package registry maps governance state onto the key-value port.
//
// Layout:
//
//	config          GlobalConfig
//	stats           Stats
//	votes/<title>   VoteRecord
//	outbox/<id>     EventEnvelope awaiting relay
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/ports"
)

const (
	ConfigKey    = "config"
	StatsKey     = "stats"
	VotePrefix   = "votes/"
	OutboxPrefix = "outbox/"
)

func VoteKey(title string) string {
	return VotePrefix + title
}

// OutboxKey orders rows by occurrence time, then by event id.
func OutboxKey(occurredAt time.Time, eventID string) string {
	return fmt.Sprintf("%s%020d-%s", OutboxPrefix, occurredAt.UTC().UnixNano(), eventID)
}

type getter func(key string) ([]byte, bool, error)

func load[T any](get getter, key string) (T, bool, error) {
	var out T
	raw, found, err := get(key)
	if err != nil {
		return out, false, domainerrors.Storage("get "+key, err)
	}
	if !found {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("%w: %s: %v", domainerrors.ErrCorruptRecord, key, err)
	}
	return out, true, nil
}

func encode(key string, value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, domainerrors.Storage("encode "+key, err)
	}
	return raw, nil
}

// Tx is the typed view of one KVStore.Update call.
type Tx struct {
	txn ports.KVTxn
}

func Wrap(txn ports.KVTxn) Tx {
	return Tx{txn: txn}
}

func (t Tx) put(key string, value any) error {
	raw, err := encode(key, value)
	if err != nil {
		return err
	}
	if err := t.txn.Put(key, raw); err != nil {
		return domainerrors.Storage("put "+key, err)
	}
	return nil
}

func (t Tx) Config() (entities.GlobalConfig, bool, error) {
	return load[entities.GlobalConfig](t.txn.Get, ConfigKey)
}

// RequireConfig fails with ErrNotInstantiated when no config was written.
func (t Tx) RequireConfig() (entities.GlobalConfig, error) {
	cfg, found, err := t.Config()
	if err != nil {
		return entities.GlobalConfig{}, err
	}
	if !found {
		return entities.GlobalConfig{}, domainerrors.ErrNotInstantiated
	}
	return cfg, nil
}

func (t Tx) PutConfig(cfg entities.GlobalConfig) error {
	return t.put(ConfigKey, cfg)
}

// Stats returns zero counters when none were written.
func (t Tx) Stats() (entities.Stats, error) {
	stats, _, err := load[entities.Stats](t.txn.Get, StatsKey)
	return stats, err
}

func (t Tx) PutStats(stats entities.Stats) error {
	return t.put(StatsKey, stats)
}

func (t Tx) Vote(title string) (entities.VoteRecord, bool, error) {
	return load[entities.VoteRecord](t.txn.Get, VoteKey(title))
}

// CreateVote inserts the record and appends its title to cfg in the same
// transaction. The updated config is returned.
func (t Tx) CreateVote(cfg entities.GlobalConfig, record entities.VoteRecord) (entities.GlobalConfig, error) {
	_, exists, err := t.Vote(record.Title)
	if err != nil {
		return cfg, err
	}
	if exists || cfg.HasTitle(record.Title) {
		return cfg, domainerrors.ErrVoteAlreadyExists
	}
	if err := t.put(VoteKey(record.Title), record); err != nil {
		return cfg, err
	}
	next := cfg.Clone()
	next.VoteTitles = append(next.VoteTitles, record.Title)
	if err := t.PutConfig(next); err != nil {
		return cfg, err
	}
	return next, nil
}

// UpdateVote loads, transforms and stores a record. When transform returns
// changed=false nothing is written.
func (t Tx) UpdateVote(
	title string,
	transform func(entities.VoteRecord) (entities.VoteRecord, bool, error),
) (entities.VoteRecord, bool, error) {
	current, found, err := t.Vote(title)
	if err != nil {
		return entities.VoteRecord{}, false, err
	}
	if !found {
		return entities.VoteRecord{}, false, domainerrors.ErrCannotFindVote
	}
	next, changed, err := transform(current)
	if err != nil {
		return current, false, err
	}
	if !changed {
		return current, false, nil
	}
	if err := t.put(VoteKey(title), next); err != nil {
		return current, false, err
	}
	return next, true, nil
}

func (t Tx) AppendOutbox(event ports.EventEnvelope) error {
	return t.put(OutboxKey(event.OccurredAt, event.EventID), event)
}

func (t Tx) DeleteOutbox(key string) error {
	if err := t.txn.Delete(key); err != nil {
		return domainerrors.Storage("delete "+key, err)
	}
	return nil
}

// Reader serves queries outside a transaction.
type Reader struct {
	Store ports.KVStore
}

func (r Reader) getter(ctx context.Context) getter {
	return func(key string) ([]byte, bool, error) {
		return r.Store.Get(ctx, key)
	}
}

func (r Reader) Config(ctx context.Context) (entities.GlobalConfig, bool, error) {
	return load[entities.GlobalConfig](r.getter(ctx), ConfigKey)
}

func (r Reader) Stats(ctx context.Context) (entities.Stats, error) {
	stats, _, err := load[entities.Stats](r.getter(ctx), StatsKey)
	return stats, err
}

func (r Reader) Vote(ctx context.Context, title string) (entities.VoteRecord, bool, error) {
	return load[entities.VoteRecord](r.getter(ctx), VoteKey(title))
}

// OutboxRow is a pending event together with its storage key.
type OutboxRow struct {
	Key   string
	Event ports.EventEnvelope
}

// PendingOutbox returns up to limit rows in key order.
func (r Reader) PendingOutbox(ctx context.Context, limit int) ([]OutboxRow, error) {
	entries, err := r.Store.Scan(ctx, OutboxPrefix)
	if err != nil {
		return nil, domainerrors.Storage("scan outbox", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	rows := make([]OutboxRow, 0, len(entries))
	for _, entry := range entries {
		var event ports.EventEnvelope
		if err := json.Unmarshal(entry.Value, &event); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domainerrors.ErrCorruptRecord, entry.Key, err)
		}
		rows = append(rows, OutboxRow{Key: entry.Key, Event: event})
	}
	return rows, nil
}
