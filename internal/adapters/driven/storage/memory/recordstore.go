package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure RecordStores implements the interface.
var (
	_ driven.RecordStoreFactory = (*RecordStores)(nil)
	_ driven.RecordStore        = (*RecordStore)(nil)
)

// RecordStores is an in-memory RecordStoreFactory keyed by path.
type RecordStores struct {
	mu     sync.Mutex
	tables map[string]*RecordStore
}

// NewRecordStores creates an empty factory.
func NewRecordStores() *RecordStores {
	return &RecordStores{tables: make(map[string]*RecordStore)}
}

// Open returns the table for path, creating it if needed.
func (f *RecordStores) Open(path string) (driven.RecordStore, error) {
	return f.Table(path), nil
}

// Table returns the concrete table for path.
func (f *RecordStores) Table(path string) *RecordStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[path]
	if !ok {
		t = &RecordStore{path: path}
		f.tables[path] = t
	}
	return t
}

// RecordStore is an in-memory record table.
type RecordStore struct {
	mu      sync.RWMutex
	path    string
	records []domain.Record
}

// Replace discards existing records and stores a copy of records.
func (s *RecordStore) Replace(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]domain.Record(nil), records...)
	return nil
}

// List returns a copy of the records.
func (s *RecordStore) List(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Record(nil), s.records...), nil
}

// Count returns the number of records.
func (s *RecordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Path returns the table key.
func (s *RecordStore) Path() string {
	return s.path
}

// Close is a no-op.
func (s *RecordStore) Close() error {
	return nil
}
