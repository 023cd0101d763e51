package driven

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// VectorIndex is a connection to the singleton embedding collection.
// Implementations must tolerate concurrent Search calls. Only the index
// builder writes.
type VectorIndex interface {
	// HasCollection reports whether the configured collection exists.
	HasCollection(ctx context.Context) (bool, error)

	// CreateCollection creates the collection and its L2 index.
	// It is a no-op if the collection already exists.
	CreateCollection(ctx context.Context, dimensions int) error

	// DropCollection removes the collection and all its vectors.
	DropCollection(ctx context.Context) error

	// Insert bulk-inserts entries. Identifiers are assigned by the store.
	Insert(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns up to k hits in ascending L2 distance order.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases the connection.
	Close() error
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// Path is the originating file path stored with the vector.
	Path string

	// Distance is the L2 distance to the query. Lower is closer.
	Distance float32
}

// VectorIndexConnector opens connections to the embedding index.
// Callers close each connection when done.
type VectorIndexConnector interface {
	Connect(ctx context.Context) (VectorIndex, error)
}
