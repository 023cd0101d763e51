package driving

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// ChatService is the retrieval-augmented query pipeline exposed to UIs.
type ChatService interface {
	// Submit runs one turn: retrieve, ground, generate, interpret.
	// It never returns an error for runtime conditions; every failure is
	// rendered into the display text. Missing credentials leave the
	// history unchanged.
	Submit(ctx context.Context, query string, mode domain.Mode, history domain.History) (string, domain.History)

	// Ask runs one turn and returns the structured interpretation,
	// including parsed edits in developer mode.
	Ask(ctx context.Context, query string, mode domain.Mode) (domain.Interpretation, error)
}

// EditApplier writes parsed file edits under a target directory.
type EditApplier interface {
	// Apply writes every edit below root and returns the written paths.
	// Paths escaping root are rejected with domain.ErrUnsafePath.
	Apply(root string, edits []domain.FileEdit) ([]string, error)
}
