// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService turns file content and queries into vectors. The index
// build and the retriever must use the same model, or distances between
// stored and query vectors mean nothing.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in the order of texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions must equal the collection's vector dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping checks reachability and credentials without embedding anything.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
