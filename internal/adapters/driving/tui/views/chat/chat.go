// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// reservedLines covers the header, input box, spinner line and status bar.
const reservedLines = 8

// View is the chat view: a transcript above a query input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.Field
	transcript *transcript.Transcript
	spinner    spinner.Model
	statusbar  *status.Bar

	chatService driving.ChatService
	ctx         context.Context

	session domain.Session
	busy    bool
	width   int
	height  int
	ready   bool
	err     error
}

// NewView creates a chat view with a fresh session in analyzer mode.
func NewView(s *styles.Styles, km *keymap.KeyMap, chatService driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQueryInput(s),
		transcript:  transcript.New(s),
		spinner:     sp,
		statusbar:   status.NewBar(s, km),
		chatService: chatService,
		ctx:         context.Background(),
		session: domain.Session{
			ID:   uuid.NewString(),
			Mode: domain.ModeAnalyzer,
		},
		width:  80,
		height: 24,
	}
	v.syncMode()
	v.statusbar.SetSession(v.session.ID, 0)
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.TurnCompleted:
		v.handleTurnCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Settings):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSettings}
		}

	case key.Matches(msg, v.keymap.ScrollUp):
		v.transcript.ScrollUp()
		return v, nil

	case key.Matches(msg, v.keymap.ScrollDown):
		v.transcript.ScrollDown()
		return v, nil
	}

	// Keys below change the session and wait for an in-flight turn.
	if v.busy {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keymap.Submit):
		return v.submit()

	case key.Matches(msg, v.keymap.CycleMode):
		v.SetMode(v.session.Mode.Next())
		mode := v.session.Mode
		return v, func() tea.Msg { return messages.ModeChanged{Mode: mode} }

	case key.Matches(msg, v.keymap.Clear):
		v.Reset()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) submit() (*View, tea.Cmd) {
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return v, nil
	}

	v.busy = true
	v.err = nil
	v.input.Reset()
	v.transcript.AddUser(query)
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")

	return v, tea.Batch(v.spinner.Tick, v.performSubmit(query, v.session.Mode, v.session.History))
}

func (v *View) performSubmit(query string, mode domain.Mode, history domain.History) tea.Cmd {
	sessionID := v.session.ID
	return func() tea.Msg {
		if v.chatService == nil {
			return messages.ErrorOccurred{Err: ErrNoChatService}
		}
		logger.Debug("session %s: submitting %s query", sessionID, mode)
		display, updated := v.chatService.Submit(v.ctx, query, mode, history)
		return messages.TurnCompleted{Query: query, Display: display, History: updated}
	}
}

func (v *View) handleTurnCompleted(msg messages.TurnCompleted) {
	v.busy = false
	v.session.History = msg.History
	v.transcript.AddAssistant(msg.Display)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetSession(v.session.ID, len(v.session.History))
}

// SetMode switches the operating mode for subsequent queries.
func (v *View) SetMode(mode domain.Mode) {
	v.session.Mode = mode
	v.syncMode()
	v.transcript.AddNotice(fmt.Sprintf("Mode: %s. %s", mode, mode.Description()))
}

func (v *View) syncMode() {
	v.statusbar.SetMode(v.session.Mode)
	v.input.SetLabel(fmt.Sprintf("[%s] > ", v.session.Mode))
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 6)
	sections = append(sections,
		v.styles.Title.Render("repochat")+" "+v.styles.ModeBadgeFor(v.session.Mode).Render(v.session.Mode.String()),
		v.transcript.View(),
	)

	if v.busy {
		sections = append(sections, v.spinner.View()+v.styles.Muted.Render(" Thinking..."))
	} else {
		sections = append(sections, "")
	}

	sections = append(sections, v.input.View(), v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.SetSize(width, max(height-reservedLines, 1))
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Busy reports whether a turn is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Session returns the current session state.
func (v *View) Session() domain.Session {
	return v.session
}

// Mode returns the current operating mode.
func (v *View) Mode() domain.Mode {
	return v.session.Mode
}

// Query returns the current input text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Transcript returns the transcript component.
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// StatusBar returns the status bar component.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// SetNotice shows a message in the status bar.
func (v *View) SetNotice(message string) {
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage(message)
}

// Reset clears the conversation and starts a new session in the same mode.
func (v *View) Reset() {
	v.session = domain.Session{ID: uuid.NewString(), Mode: v.session.Mode}
	v.busy = false
	v.err = nil
	v.input.Reset()
	v.transcript.Clear()
	v.statusbar.Clear()
	v.statusbar.SetSession(v.session.ID, 0)
}
