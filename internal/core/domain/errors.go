package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrMissingCredential indicates no model API key is configured.
	// The pipeline reports this to the user without attempting a network call.
	ErrMissingCredential = errors.New("API key not set")

	// ErrIndexUnavailable indicates the vector store is unreachable or the
	// collection does not exist. Retrieval degrades to an empty result.
	ErrIndexUnavailable = errors.New("embedding index unavailable")

	// ErrGeneration indicates the chat-completion call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrInvalidMode indicates an unrecognised operating mode.
	// This is a programming error at the call site.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service could not be created.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Extraction Errors.

	// ErrNoRecords indicates the extraction directory holds no record table.
	ErrNoRecords = errors.New("no extracted records found")

	// ErrRateLimited indicates a remote source refused requests until its quota resets.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates a remote source rejected the configured token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsafePath indicates an archive entry or edit path escapes its root.
	ErrUnsafePath = errors.New("path escapes target directory")
)
