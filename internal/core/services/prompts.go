package services

import (
	"fmt"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// PromptSelector maps an operating mode to its instruction template.
type PromptSelector struct {
	store driven.PromptStore
}

// NewPromptSelector creates a selector backed by store.
func NewPromptSelector(store driven.PromptStore) *PromptSelector {
	return &PromptSelector{store: store}
}

// PromptName returns the template name for mode.
func PromptName(mode domain.Mode) (string, error) {
	switch mode {
	case domain.ModeAnalyzer:
		return driven.PromptAnalyzer, nil
	case domain.ModeDebugger:
		return driven.PromptDebugger, nil
	case domain.ModeDeveloper:
		return driven.PromptDeveloper, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidMode, mode)
	}
}

// Select returns the instruction template for mode.
func (s *PromptSelector) Select(mode domain.Mode) (string, error) {
	name, err := PromptName(mode)
	if err != nil {
		return "", err
	}
	tmpl, err := s.store.Load(name)
	if err != nil {
		return "", fmt.Errorf("load %s prompt: %w", name, err)
	}
	return tmpl, nil
}
