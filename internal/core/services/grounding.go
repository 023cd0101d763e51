package services

import (
	"strings"

	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// GroundingAssembler concatenates the contents of retrieved files.
type GroundingAssembler struct {
	reader driven.FileReader
}

// NewGroundingAssembler creates a grounding assembler.
func NewGroundingAssembler(reader driven.FileReader) *GroundingAssembler {
	return &GroundingAssembler{reader: reader}
}

// Build reads each path in order and returns the contents, each followed
// by a newline. Unreadable paths are logged and skipped. An empty result
// means the request is ungrounded.
func (g *GroundingAssembler) Build(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		data, err := g.reader.ReadFile(p)
		if err != nil {
			logger.Warn("Skipping document %s: %v", p, err)
			continue
		}
		b.Write(data)
		b.WriteString("\n")
	}
	return b.String()
}
