package mcp

import (
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// PromptSource returns the instruction template for a mode.
type PromptSource interface {
	Select(mode domain.Mode) (string, error)
}

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat runs the retrieval-augmented pipeline.
	Chat driving.ChatService

	// Prompts exposes mode templates as resources. Optional.
	Prompts PromptSource
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
