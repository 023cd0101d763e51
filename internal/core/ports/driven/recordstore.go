package driven

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// RecordStore persists the {path, content} table produced by extraction.
type RecordStore interface {
	// Replace discards all existing records and writes the given set.
	Replace(ctx context.Context, records []domain.Record) error

	// List returns all records in discovery order.
	List(ctx context.Context) ([]domain.Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Path returns the backing file location.
	Path() string

	// Close releases resources.
	Close() error
}

// RecordStoreFactory opens record tables by file path.
type RecordStoreFactory interface {
	// Open opens or creates the record table at path.
	Open(path string) (RecordStore, error)
}
