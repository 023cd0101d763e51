package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure EditService implements the interface.
var _ driving.EditApplier = (*EditService)(nil)

// EditService writes developer-mode file edits to disk.
type EditService struct{}

// NewEditService creates an edit service.
func NewEditService() *EditService {
	return &EditService{}
}

// Apply validates every path first and writes nothing if any escapes root.
// Later edits to the same path win.
func (s *EditService) Apply(root string, edits []domain.FileEdit) ([]string, error) {
	targets := make([]string, len(edits))
	for i, e := range edits {
		t, err := safeJoin(root, e.Path)
		if err != nil {
			return nil, err
		}
		targets[i] = t
	}

	written := make([]string, 0, len(edits))
	for i, e := range edits {
		if err := os.MkdirAll(filepath.Dir(targets[i]), 0o755); err != nil {
			return written, fmt.Errorf("create directory for %s: %w", e.Path, err)
		}
		content := e.Content
		if content != "" && content[len(content)-1] != '\n' {
			content += "\n"
		}
		if err := os.WriteFile(targets[i], []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", e.Path, err)
		}
		logger.Info("Wrote %s", targets[i])
		written = append(written, targets[i])
	}
	return written, nil
}
