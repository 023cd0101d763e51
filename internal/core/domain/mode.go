package domain

import "fmt"

// Mode is an operating mode of the assistant. It selects both the
// instruction template and the response post-processing rule.
type Mode int

// Available modes. The zero value is not a valid mode.
const (
	// ModeAnalyzer explains project structure, purpose and architecture.
	ModeAnalyzer Mode = iota + 1

	// ModeDebugger looks for bugs, performance problems and fixes.
	ModeDebugger

	// ModeDeveloper proposes full-file edits in the BEGIN/END FILE format.
	ModeDeveloper
)

// AllModes returns every valid mode in display order.
func AllModes() []Mode {
	return []Mode{ModeAnalyzer, ModeDebugger, ModeDeveloper}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "analyzer":
		return ModeAnalyzer, nil
	case "debugger":
		return ModeDebugger, nil
	case "developer":
		return ModeDeveloper, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, name)
	}
}

// IsValid returns true if the mode is recognised.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAnalyzer, ModeDebugger, ModeDeveloper:
		return true
	default:
		return false
	}
}

// String returns the mode name used on the command line and in config.
func (m Mode) String() string {
	switch m {
	case ModeAnalyzer:
		return "analyzer"
	case ModeDebugger:
		return "debugger"
	case ModeDeveloper:
		return "developer"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Description returns a human-readable description of the mode.
func (m Mode) Description() string {
	switch m {
	case ModeAnalyzer:
		return "Analyzer (explain structure and design)"
	case ModeDebugger:
		return "Debugger (find bugs and improvements)"
	case ModeDeveloper:
		return "Developer (propose full-file edits)"
	default:
		return unknownDescription
	}
}

// ProducesEdits returns true if responses in this mode carry file blocks.
func (m Mode) ProducesEdits() bool {
	return m == ModeDeveloper
}

// Next returns the following mode, wrapping around. Used by the chat UI.
func (m Mode) Next() Mode {
	switch m {
	case ModeAnalyzer:
		return ModeDebugger
	case ModeDebugger:
		return ModeDeveloper
	default:
		return ModeAnalyzer
	}
}
