// Package filesystem provides local file access for grounding.
package filesystem

import (
	"os"

	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.FileReader = Reader{}

// Reader reads files from the local disk.
type Reader struct{}

// ReadFile returns the contents of path.
func (Reader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
