package mcp

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	result domain.Interpretation
	err    error

	gotQuery string
	gotMode  domain.Mode
}

func (m *mockChatService) Submit(
	_ context.Context,
	_ string,
	_ domain.Mode,
	history domain.History,
) (string, domain.History) {
	return m.result.Display, history
}

func (m *mockChatService) Ask(_ context.Context, query string, mode domain.Mode) (domain.Interpretation, error) {
	m.gotQuery = query
	m.gotMode = mode
	return m.result, m.err
}

// mockPrompts is a mock PromptSource.
type mockPrompts struct {
	err error
}

func (m *mockPrompts) Select(mode domain.Mode) (string, error) {
	return "prompt for " + mode.String(), m.err
}
