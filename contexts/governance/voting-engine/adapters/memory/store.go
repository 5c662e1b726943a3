package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"governance/contexts/governance/voting-engine/ports"
)

// Store is an in-process KVStore. Update stages writes in a private set and
// publishes them under the write lock only when fn succeeds.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(value), true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = cloneBytes(value)
	return nil
}

func (s *Store) Update(ctx context.Context, fn func(tx ports.KVTxn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{base: s.values, writes: make(map[string]*[]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for key, value := range tx.writes {
		if value == nil {
			delete(s.values, key)
			continue
		}
		s.values[key] = *value
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, prefix string) ([]ports.KVEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.KVEntry, 0)
	for key, value := range s.values {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ports.KVEntry{Key: key, Value: cloneBytes(value)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (s *Store) Close() error {
	return nil
}

// txn records writes as key -> value, with a nil pointer marking deletion.
type txn struct {
	base   map[string][]byte
	writes map[string]*[]byte
}

func (t *txn) Get(key string) ([]byte, bool, error) {
	if staged, ok := t.writes[key]; ok {
		if staged == nil {
			return nil, false, nil
		}
		return cloneBytes(*staged), true, nil
	}
	value, ok := t.base[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(value), true, nil
}

func (t *txn) Put(key string, value []byte) error {
	copied := cloneBytes(value)
	t.writes[key] = &copied
	return nil
}

func (t *txn) Delete(key string) error {
	t.writes[key] = nil
	return nil
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}

var _ ports.KVStore = (*Store)(nil)
