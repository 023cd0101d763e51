// Package styles holds the colours and lipgloss styles of the chat UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// Theme is the colour palette. Modes colours the mode badge; a mode
// missing from the map uses Secondary.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	StatusBar  lipgloss.Color

	Modes map[domain.Mode]lipgloss.Color
}

// DefaultTheme returns a dark palette.
func DefaultTheme() *Theme {
	t := &Theme{
		Primary:    "#7C3AED",
		Secondary:  "#06B6D4",
		Background: "#1E1E2E",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Success:    "#A6E3A1",
		Warning:    "#F9E2AF",
		Error:      "#F38BA8",
		Border:     "#45475A",
		StatusBar:  "#181825",
	}
	t.Modes = map[domain.Mode]lipgloss.Color{
		domain.ModeAnalyzer:  t.Secondary,
		domain.ModeDebugger:  t.Warning,
		domain.ModeDeveloper: t.Success,
	}
	return t
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style

	// ModeBadge is the uncoloured badge; use ModeBadgeFor.
	ModeBadge lipgloss.Style
}

// NewStyles derives styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	text := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	heading := func(c lipgloss.Color) lipgloss.Style { return text(c).Bold(true) }

	return &Styles{
		theme:    theme,
		Title:    heading(theme.Primary),
		Subtitle: heading(theme.Secondary),
		Normal:   text(theme.Foreground),
		Muted:    text(theme.Muted),
		Selected: heading(theme.Foreground).Background(theme.Primary),
		Error:    text(theme.Error),
		Success:  text(theme.Success),
		Help:     text(theme.Muted),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: text(theme.Muted).Background(theme.StatusBar).Padding(0, 1),

		UserLabel:      heading(theme.Secondary),
		AssistantLabel: heading(theme.Primary),

		ModeBadge: heading(theme.Background).Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ModeBadgeFor returns the badge style coloured for mode.
func (s *Styles) ModeBadgeFor(mode domain.Mode) lipgloss.Style {
	c, ok := s.theme.Modes[mode]
	if !ok {
		c = s.theme.Secondary
	}
	return s.ModeBadge.Background(c)
}
