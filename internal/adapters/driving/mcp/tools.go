package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/logger"
)

// AskInput is the input schema for the ask_project tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the question or change request about the indexed project"`
	Mode  string `json:"mode,omitempty" jsonschema:"analyzer, debugger or developer (default analyzer)"`
}

// AskOutput is the output schema for the ask_project tool.
type AskOutput struct {
	RequestID string       `json:"request_id"`
	Mode      string       `json:"mode"`
	Response  string       `json:"response"`
	Edits     []EditOutput `json:"edits,omitempty"`
}

// EditOutput is one proposed full-file replacement.
type EditOutput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask_project",
		Description: "Ask about the indexed project. Relevant files are retrieved and sent " +
			"to the configured model. Developer mode returns full-file edits.",
	}, s.handleAsk)
}

// handleAsk handles the ask_project tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	mode := domain.ModeAnalyzer
	if input.Mode != "" {
		parsed, err := domain.ParseMode(input.Mode)
		if err != nil {
			return nil, AskOutput{}, err
		}
		mode = parsed
	}

	requestID := uuid.NewString()
	logger.Debug("MCP request %s: mode=%s", requestID, mode)

	result, err := s.ports.Chat.Ask(ctx, input.Query, mode)
	if err != nil {
		logger.Warn("MCP request %s failed: %v", requestID, err)
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		RequestID: requestID,
		Mode:      mode.String(),
		Response:  result.Display,
	}
	for _, edit := range result.Edits {
		output.Edits = append(output.Edits, EditOutput{Path: edit.Path, Content: edit.Content})
	}

	return nil, output, nil
}
