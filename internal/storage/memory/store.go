// Package memory is an in-memory TenantStore for tests and single-process
// development setups.
package memory

import (
	"context"
	"sync"

	"github.com/drishiq/concierge/internal/storage"
)

// Store keeps tenant records in a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	records map[string]*storage.TenantRecord
}

var _ storage.TenantStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]*storage.TenantRecord)}
}

// GetTenantRecord returns a copy of the stored record, or (nil, nil) when
// the tenant has none.
func (s *Store) GetTenantRecord(_ context.Context, tenantID string) (*storage.TenantRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[tenantID]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

// PutTenantRecord stores a copy of rec keyed by its tenant id.
func (s *Store) PutTenantRecord(_ context.Context, rec *storage.TenantRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[rec.TenantID] = &cp
	return nil
}
