package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Retriever embeds a query and returns the nearest indexed file paths.
type Retriever struct {
	connector driven.VectorIndexConnector
	embedder  driven.EmbeddingService
	topK      int
	policy    RetryPolicy
}

// NewRetriever creates a retriever. topK values below 1 use the default.
func NewRetriever(
	connector driven.VectorIndexConnector,
	embedder driven.EmbeddingService,
	topK int,
	policy RetryPolicy,
) *Retriever {
	if topK < 1 {
		topK = domain.DefaultTopK
	}
	return &Retriever{
		connector: connector,
		embedder:  embedder,
		topK:      topK,
		policy:    policy,
	}
}

// Retrieve returns up to topK paths in ascending distance order.
// A missing collection yields an empty result. An unreachable store
// yields an error wrapping domain.ErrIndexUnavailable.
// A connection is opened and closed on every call.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	idx, err := connectIndex(ctx, r.connector, r.policy)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	exists, err := idx.HasCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if !exists {
		logger.Debug("Collection does not exist, no documents retrieved")
		return []string{}, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := idx.Search(ctx, vec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrIndexUnavailable, err)
	}

	paths := make([]string, 0, len(hits))
	for _, h := range hits {
		paths = append(paths, h.Path)
	}
	logger.Debug("Retrieved %d paths", len(paths))
	return paths, nil
}
