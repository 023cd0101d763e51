package driving

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// ExtractionService turns source trees and archives into record tables.
type ExtractionService interface {
	// Extract walks root and replaces the record table named after its
	// last path segment.
	Extract(ctx context.Context, root string) (*domain.ExtractionSummary, error)

	// Ingest clears the workspace, unpacks the zip archive into it and
	// extracts the result.
	Ingest(ctx context.Context, archive string) (*domain.ExtractionSummary, error)

	// IngestRepository downloads owner/name[@ref] from the code host and
	// ingests the archive.
	IngestRepository(ctx context.Context, target string) (*domain.ExtractionSummary, error)
}
