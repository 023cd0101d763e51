// Package mcp provides an MCP (Model Context Protocol) server adapter for repochat.
// It lets AI assistants ask questions about the indexed project through the
// same retrieval pipeline as the chat UI.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
