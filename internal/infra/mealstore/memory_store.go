// Package mealstore implements ledger.Store on process memory, SQLite,
// Postgres and Valkey.
package mealstore

import (
	"context"
	"io"
	"sync"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
)

// MemoryStore keeps records for the lifetime of the process; used for dev and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]ledger.Record
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]ledger.Record)}
}

// Append implements ledger.Store.
func (s *MemoryStore) Append(_ context.Context, owner string, record ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[owner] = append(s.records[owner], record)
	return nil
}

// List implements ledger.Store.
func (s *MemoryStore) List(_ context.Context, owner string) ([]ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Record, len(s.records[owner]))
	copy(out, s.records[owner])
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

var _ ledger.Store = (*MemoryStore)(nil)

// Store is a ledger.Store whose resources are released on shutdown.
type Store interface {
	ledger.Store
	io.Closer
}
