// Package transcript renders the conversation in a scrollable viewport.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
)

// Role identifies who produced an entry.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleNotice
)

// Entry is one block in the transcript.
type Entry struct {
	Role    Role
	Content string
}

const (
	defaultWidth  = 80
	defaultHeight = 20
	minWrapWidth  = 20

	// Standard glamour style names.
	DarkMarkdown  = "dark"
	LightMarkdown = "light"
)

// Transcript holds conversation entries and renders assistant replies as markdown.
type Transcript struct {
	styles   *styles.Styles
	viewport viewport.Model
	renderer *glamour.TermRenderer
	entries  []Entry
	width    int
	mdStyle  string
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	mdStyle := LightMarkdown
	if lipgloss.HasDarkBackground() {
		mdStyle = DarkMarkdown
	}
	t := &Transcript{
		styles:   s,
		viewport: viewport.New(defaultWidth, defaultHeight),
		mdStyle:  mdStyle,
	}
	t.setRendererWidth(defaultWidth)
	return t
}

// Update forwards scroll messages to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// SetSize resizes the viewport and rewraps content.
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	if width != t.width {
		t.setRendererWidth(width)
	}
	t.refresh()
}

// SetMarkdownStyle switches the glamour style used for replies.
func (t *Transcript) SetMarkdownStyle(name string) {
	t.mdStyle = name
	t.setRendererWidth(t.width)
	t.refresh()
}

// AddUser appends a user query.
func (t *Transcript) AddUser(content string) {
	t.add(Entry{Role: RoleUser, Content: content})
}

// AddAssistant appends an assistant reply.
func (t *Transcript) AddAssistant(content string) {
	t.add(Entry{Role: RoleAssistant, Content: content})
}

// AddNotice appends a status line such as an error or mode change.
func (t *Transcript) AddNotice(content string) {
	t.add(Entry{Role: RoleNotice, Content: content})
}

// Entries returns the entries in order.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Clear removes all entries.
func (t *Transcript) Clear() {
	t.entries = nil
	t.refresh()
}

// ScrollUp moves the view up one page.
func (t *Transcript) ScrollUp() {
	t.viewport.PageUp()
}

// ScrollDown moves the view down one page.
func (t *Transcript) ScrollDown() {
	t.viewport.PageDown()
}

// Content returns the full rendered transcript.
func (t *Transcript) Content() string {
	return t.render()
}

func (t *Transcript) add(e Entry) {
	t.entries = append(t.entries, e)
	t.refresh()
	t.viewport.GotoBottom()
}

func (t *Transcript) setRendererWidth(width int) {
	t.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.mdStyle),
		glamour.WithWordWrap(max(width-4, minWrapWidth)),
	)
	if err != nil {
		t.renderer = nil
		return
	}
	t.renderer = r
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
}

func (t *Transcript) render() string {
	var sb strings.Builder
	for _, e := range t.entries {
		switch e.Role {
		case RoleUser:
			sb.WriteString(t.styles.UserLabel.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(t.styles.Normal.Render(e.Content))
			sb.WriteString("\n\n")
		case RoleAssistant:
			sb.WriteString(t.styles.AssistantLabel.Render("repochat"))
			sb.WriteString("\n")
			sb.WriteString(t.markdown(e.Content))
			sb.WriteString("\n")
		case RoleNotice:
			sb.WriteString(t.styles.Muted.Render(e.Content))
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// markdown falls back to plain text when rendering fails.
func (t *Transcript) markdown(content string) string {
	if t.renderer == nil {
		return content + "\n"
	}
	out, err := t.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return out
}
