package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for repochat resources.
	uriScheme = "repochat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "modes",
		Name:        "modes",
		Description: "Operating modes accepted by ask_project",
		MIMEType:    "application/json",
	}, s.handleModesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "modes/{mode}/prompt",
		Name:        "mode-prompt",
		Description: "Instruction template sent as the system message for a mode",
		MIMEType:    "text/plain",
	}, s.handlePromptResource)
}

// modeInfo describes one mode in the modes resource.
type modeInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProducesEdit bool   `json:"produces_edits"`
}

// handleModesResource lists every operating mode.
func (s *Server) handleModesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	modes := domain.AllModes()
	infos := make([]modeInfo, len(modes))
	for i, m := range modes {
		infos[i] = modeInfo{
			Name:         m.String(),
			Description:  m.Description(),
			ProducesEdit: m.ProducesEdits(),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling modes: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePromptResource returns the template for the mode named in the URI.
func (s *Server) handlePromptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Prompts == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	mode, err := domain.ParseMode(extractMode(req.Params.URI))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	prompt, err := s.ports.Prompts.Select(mode)
	if err != nil {
		return nil, fmt.Errorf("loading prompt: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     prompt,
		}},
	}, nil
}

// extractMode extracts the mode from a URI like repochat://modes/{mode}/prompt.
func extractMode(uri string) string {
	const prefix = uriScheme + "modes/"
	const suffix = "/prompt"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
}
