package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// User-facing messages produced at the pipeline boundary.
const (
	MissingCredentialMessage = "Error: OpenAI API key not set. Please set the API key in the Settings tab."
	GenericErrorMessage      = "An error occurred during processing. Please check the logs."
)

// ChatService runs the retrieval-augmented query pipeline:
// retrieve, ground, select instructions, generate, interpret.
type ChatService struct {
	retriever *Retriever
	grounding *GroundingAssembler
	selector  *PromptSelector
	generator *ResponseGenerator
}

// NewChatService creates a chat service. retriever may be nil, in which
// case every request is ungrounded.
func NewChatService(
	retriever *Retriever,
	grounding *GroundingAssembler,
	selector *PromptSelector,
	generator *ResponseGenerator,
) *ChatService {
	return &ChatService{
		retriever: retriever,
		grounding: grounding,
		selector:  selector,
		generator: generator,
	}
}

// Ask runs one turn and returns the interpretation.
// Errors: domain.ErrInvalidMode, domain.ErrMissingCredential, domain.ErrGeneration.
// Retrieval failures degrade to an ungrounded request.
func (s *ChatService) Ask(ctx context.Context, query string, mode domain.Mode) (domain.Interpretation, error) {
	logger.Section("Chat Turn")
	logger.Debug("Mode: %s, query: %q", mode, query)

	instructions, err := s.selector.Select(mode)
	if err != nil {
		return domain.Interpretation{}, err
	}

	if err := s.generator.Ready(); err != nil {
		return domain.Interpretation{}, err
	}

	grounding := s.ground(ctx, query)

	raw, err := s.generator.Generate(ctx, query, grounding, instructions)
	if err != nil {
		return domain.Interpretation{}, err
	}

	return Interpret(mode, raw)
}

// Submit runs one turn and renders every outcome into display text.
// A missing credential leaves history unchanged. All other outcomes
// append a turn.
func (s *ChatService) Submit(
	ctx context.Context, query string, mode domain.Mode, history domain.History,
) (string, domain.History) {
	interp, err := s.Ask(ctx, query, mode)

	var display string
	switch {
	case err == nil:
		display = interp.Display
	case errors.Is(err, domain.ErrMissingCredential):
		return MissingCredentialMessage, history
	case errors.Is(err, domain.ErrInvalidMode):
		logger.Error("Rejected turn: %v", err)
		return fmt.Sprintf("Error: %v", err), history
	default:
		logger.Error("Chat turn failed: %v", err)
		display = GenericErrorMessage
	}

	return display, history.Append(domain.ConversationTurn{
		Query:           query,
		DisplayResponse: display,
	})
}

// ground retrieves and assembles grounding text. Any retrieval failure is
// logged and produces an empty grounding.
func (s *ChatService) ground(ctx context.Context, query string) string {
	if s.retriever == nil || strings.TrimSpace(query) == "" {
		return ""
	}

	paths, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		logger.Warn("Retrieval unavailable, answering without documents: %v", err)
		return ""
	}
	if len(paths) == 0 {
		return ""
	}
	return s.grounding.Build(paths)
}
