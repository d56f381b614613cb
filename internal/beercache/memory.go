package beercache

import (
	"context"
	"sort"
	"sync"

	"github.com/tapmatch/tapmatch/internal/types"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]types.BeerRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]types.BeerRecord)}
}

// Get returns the record for key or *NotFoundError.
func (s *MemoryStore) Get(_ context.Context, key string) (*types.BeerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, &NotFoundError{Name: key}
	}
	return &rec, nil
}

// Put upserts a record under its normalized name.
func (s *MemoryStore) Put(_ context.Context, rec *types.BeerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key()] = *rec
	return nil
}

// Keys returns all keys in lexicographic order.
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
