package services

import (
	"fmt"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/fileblock"
)

// Interpret post-processes a raw response for mode. Analyzer and debugger
// responses pass through. Developer responses are parsed into file edits
// and the display becomes a rendering of those edits.
func Interpret(mode domain.Mode, raw string) (domain.Interpretation, error) {
	switch mode {
	case domain.ModeAnalyzer, domain.ModeDebugger:
		return domain.Interpretation{Display: raw}, nil

	case domain.ModeDeveloper:
		blocks := fileblock.Parse(raw)
		edits := make([]domain.FileEdit, 0, len(blocks))
		for _, b := range blocks {
			edits = append(edits, domain.FileEdit{Path: b.Path, Content: b.Content})
		}
		return domain.Interpretation{
			Display: fileblock.Render(blocks),
			Edits:   edits,
		}, nil

	default:
		return domain.Interpretation{}, fmt.Errorf("%w: %s", domain.ErrInvalidMode, mode)
	}
}
