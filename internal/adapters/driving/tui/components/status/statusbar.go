// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateHelp     State = "help"
	StateSettings State = "settings"
)

// shortIDLength is how much of the session ID the bar shows.
const shortIDLength = 8

// Bar displays application status and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     State
	message   string
	mode      domain.Mode
	sessionID string
	turns     int
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		mode:   domain.ModeAnalyzer,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	badge := s.styles.ModeBadgeFor(s.mode).Render(s.mode.String())

	var state string
	switch s.state {
	case StateThinking:
		state = s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			state = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			state = s.styles.Error.Render("Error")
		}
	case StateHelp:
		state = s.styles.Normal.Render("Help")
	case StateSettings:
		state = s.styles.Normal.Render("Settings")
	default:
		if s.message != "" {
			state = s.styles.Success.Render(s.message)
		} else {
			state = s.styles.Muted.Render("Ready")
		}
	}

	parts := []string{badge, state}
	if s.sessionID != "" {
		parts = append(parts, s.styles.Muted.Render(fmt.Sprintf("session %s", s.shortSessionID())))
	}
	if s.turns > 0 {
		parts = append(parts, s.styles.Muted.Render(fmt.Sprintf("%d turns", s.turns)))
	}
	return strings.Join(parts, " ")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateSettings {
		bindings = s.keymap.SettingsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func (s *Bar) shortSessionID() string {
	if len(s.sessionID) <= shortIDLength {
		return s.sessionID
	}
	return s.sessionID[:shortIDLength]
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetMode sets the displayed operating mode.
func (s *Bar) SetMode(mode domain.Mode) {
	s.mode = mode
}

// Mode returns the displayed operating mode.
func (s *Bar) Mode() domain.Mode {
	return s.mode
}

// SetSession sets the session ID and completed turn count.
func (s *Bar) SetSession(id string, turns int) {
	s.sessionID = id
	s.turns = turns
}

// Turns returns the displayed turn count.
func (s *Bar) Turns() int {
	return s.turns
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets state and message. Mode and session are kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
