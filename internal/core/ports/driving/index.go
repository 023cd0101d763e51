package driving

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// IndexOptions configures an index build.
type IndexOptions struct {
	// Source is the record table to read. Empty selects the most recent
	// table in the extraction directory.
	Source string

	// Rebuild drops the collection before populating it.
	Rebuild bool
}

// IndexService builds the embedding index from extracted records.
type IndexService interface {
	// Build creates the collection if absent and bulk-inserts one vector
	// per embeddable record. It fails once connection retries are exhausted.
	Build(ctx context.Context, opts IndexOptions) (*domain.IndexSummary, error)
}
