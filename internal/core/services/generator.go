package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// groundingHeader prefixes the grounding message.
const groundingHeader = "Relevant documents:\n"

// ResponseGenerator sends instructions, grounding and the query to the chat model.
type ResponseGenerator struct {
	settings    domain.LLMSettings
	credentials driven.CredentialProvider
	factory     driven.LLMFactory

	mu      sync.Mutex
	current *llmLease
}

// llmLease counts the calls using a client. A retired client is closed
// once its last call returns.
type llmLease struct {
	svc     driven.LLMService
	key     string
	refs    int
	retired bool
}

// NewResponseGenerator creates a generator. The LLM client is created lazily
// from settings and the current credential, and recreated when the key changes.
func NewResponseGenerator(
	settings domain.LLMSettings,
	credentials driven.CredentialProvider,
	factory driven.LLMFactory,
) *ResponseGenerator {
	return &ResponseGenerator{
		settings:    settings,
		credentials: credentials,
		factory:     factory,
	}
}

// Ready reports domain.ErrMissingCredential if the provider needs a key and
// none is configured. It never touches the network.
func (g *ResponseGenerator) Ready() error {
	_, err := g.apiKey()
	return err
}

// Messages assembles the request: system instructions, the grounding message
// when grounding is non-empty, then the query.
func Messages(query, grounding, instructions string) []driven.ChatMessage {
	msgs := make([]driven.ChatMessage, 0, 3)
	msgs = append(msgs, driven.ChatMessage{Role: driven.RoleSystem, Content: instructions})
	if grounding != "" {
		msgs = append(msgs, driven.ChatMessage{Role: driven.RoleUser, Content: groundingHeader + grounding})
	}
	msgs = append(msgs, driven.ChatMessage{Role: driven.RoleUser, Content: query})
	return msgs
}

// Generate returns the raw model response.
func (g *ResponseGenerator) Generate(ctx context.Context, query, grounding, instructions string) (string, error) {
	lease, err := g.acquire()
	if err != nil {
		return "", err
	}
	defer g.release(lease)
	llm := lease.svc

	logger.Debug("Generating with %s (grounded=%t)", llm.ModelName(), grounding != "")
	text, err := llm.Chat(ctx, Messages(query, grounding, instructions), driven.ChatOptions{
		Temperature: g.settings.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return text, nil
}

// Close releases the cached client. Calls still in flight keep it open
// until they return.
func (g *ResponseGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	err := g.retire(g.current)
	g.current = nil
	return err
}

func (g *ResponseGenerator) apiKey() (string, error) {
	if !g.settings.Provider.RequiresAPIKey() {
		return "", nil
	}
	if g.credentials == nil {
		return "", domain.ErrMissingCredential
	}
	key, err := g.credentials.APIKey()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMissingCredential, err)
	}
	if key == "" {
		return "", domain.ErrMissingCredential
	}
	return key, nil
}

// acquire returns a lease on the client for the current key, creating the
// client when the key has changed. Callers must release it.
func (g *ResponseGenerator) acquire() (*llmLease, error) {
	key, err := g.apiKey()
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != nil && g.current.key == key {
		g.current.refs++
		return g.current, nil
	}
	if g.current != nil {
		if err := g.retire(g.current); err != nil {
			logger.Warn("Closing previous LLM client: %v", err)
		}
		g.current = nil
	}

	settings := g.settings
	settings.APIKey = key
	llm, err := g.factory.CreateLLM(&settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}

	g.current = &llmLease{svc: llm, key: key, refs: 1}
	return g.current, nil
}

func (g *ResponseGenerator) release(l *llmLease) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.retired && l.refs == 0 {
		if err := l.svc.Close(); err != nil {
			logger.Warn("Closing retired LLM client: %v", err)
		}
	}
}

// retire marks l for closing and closes it now if no call holds it.
// g.mu must be held.
func (g *ResponseGenerator) retire(l *llmLease) error {
	l.retired = true
	if l.refs > 0 {
		return nil
	}
	return l.svc.Close()
}
