// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// LLMService provides chat-completion operations for response generation.
//
// Implementations may include:
//   - OpenAI (GPT-3.5, GPT-4)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat sends an ordered message list and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// LLMFactory creates LLM services from settings. The generator uses it to
// rebuild the client when the API key changes between requests.
type LLMFactory interface {
	CreateLLM(settings *domain.LLMSettings) (LLMService, error)
}
