package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/repochat/internal/adapters/driven/vector"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex          = (*VectorIndex)(nil)
	_ driven.VectorIndexConnector = (*VectorIndex)(nil)
)

// VectorIndex is an in-memory embedding collection with exact L2 search.
// Connect returns the same instance; Close is a no-op so the collection
// survives across connections.
type VectorIndex struct {
	mu         sync.RWMutex
	exists     bool
	dimensions int
	nextSeq    int64
	entries    []vector.Candidate

	// ConnectErr, when set, is returned by Connect.
	ConnectErr error
	// Connects counts Connect calls.
	Connects int
}

// NewVectorIndex creates an empty in-memory index with no collection.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Connect returns the index itself.
func (v *VectorIndex) Connect(_ context.Context) (driven.VectorIndex, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Connects++
	if v.ConnectErr != nil {
		return nil, v.ConnectErr
	}
	return v, nil
}

// HasCollection reports whether the collection exists.
func (v *VectorIndex) HasCollection(_ context.Context) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.exists, nil
}

// CreateCollection creates the collection if absent.
func (v *VectorIndex) CreateCollection(_ context.Context, dimensions int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.exists {
		return nil
	}
	v.exists = true
	v.dimensions = dimensions
	return nil
}

// DropCollection removes the collection and its vectors.
func (v *VectorIndex) DropCollection(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.exists = false
	v.entries = nil
	return nil
}

// Insert appends entries.
func (v *VectorIndex) Insert(_ context.Context, entries []domain.IndexEntry) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.exists {
		return domain.ErrNotFound
	}
	for _, e := range entries {
		if len(e.Vector) != v.dimensions {
			return errors.New("vector dimension does not match collection")
		}
		v.nextSeq++
		v.entries = append(v.entries, vector.Candidate{Seq: v.nextSeq, Path: e.Path, Vector: e.Vector})
	}
	return nil
}

// Search returns the k nearest entries.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.exists {
		return nil, domain.ErrNotFound
	}
	return vector.Nearest(query, v.entries, k)
}

// Len returns the number of stored vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
