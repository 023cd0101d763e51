package chat

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

const missingKey = "Error: API key not set."

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	SubmitFunc func(ctx context.Context, query string, mode domain.Mode, history domain.History) (string, domain.History)
	calls      int
	lastMode   domain.Mode
}

func (m *MockChatService) Submit(
	ctx context.Context,
	query string,
	mode domain.Mode,
	history domain.History,
) (string, domain.History) {
	m.calls++
	m.lastMode = mode
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, query, mode, history)
	}
	display := "answer to " + query
	return display, history.Append(domain.ConversationTurn{Query: query, DisplayResponse: display})
}

func (m *MockChatService) Ask(_ context.Context, query string, mode domain.Mode) (domain.Interpretation, error) {
	return domain.Interpretation{Display: "answer to " + query}, nil
}

// runCmd executes cmd and flattens batches into the resulting messages.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(t, c)...)
	}
	return out
}

func findTurn(msgs []tea.Msg) (messages.TurnCompleted, bool) {
	for _, m := range msgs {
		if turn, ok := m.(messages.TurnCompleted); ok {
			return turn, true
		}
	}
	return messages.TurnCompleted{}, false
}

func newReadyView(svc *MockChatService) *View {
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 30)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &MockChatService{})

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.False(t, v.Busy())
	assert.Equal(t, domain.ModeAnalyzer, v.Mode())
	assert.Len(t, v.Session().ID, 36)
	assert.Empty(t, v.Session().History)
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_InitReturnsBlink(t *testing.T) {
	v := NewView(nil, nil, nil)

	assert.NotNil(t, v.Init())
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)

	v, cmd := v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.Width())
	assert.Equal(t, 40, v.Height())
}

func TestView_SubmitRunsTurn(t *testing.T) {
	svc := &MockChatService{}
	v := newReadyView(svc)
	v.SetQuery("how does indexing work")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, v.Busy())
	assert.Empty(t, v.Query())
	assert.Equal(t, status.StateThinking, v.StatusBar().State())

	turn, ok := findTurn(runCmd(t, cmd))
	require.True(t, ok)
	assert.Equal(t, "how does indexing work", turn.Query)
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, domain.ModeAnalyzer, svc.lastMode)

	v, _ = v.Update(turn)

	assert.False(t, v.Busy())
	require.Len(t, v.Session().History, 1)
	assert.Equal(t, "answer to how does indexing work", v.Session().History[0].DisplayResponse)
	assert.Equal(t, 1, v.StatusBar().Turns())
	entries := v.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, transcript.RoleUser, entries[0].Role)
	assert.Equal(t, transcript.RoleAssistant, entries[1].Role)
}

func TestView_SubmitEmptyQueryIgnored(t *testing.T) {
	svc := &MockChatService{}
	v := newReadyView(svc)
	v.SetQuery("   ")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Busy())
	assert.Equal(t, 0, svc.calls)
}

func TestView_SubmitIgnoredWhileBusy(t *testing.T) {
	v := newReadyView(&MockChatService{})
	v.SetQuery("first")
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Busy())

	v.SetQuery("second")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, "second", v.Query())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Nil(t, cmd)
	assert.Equal(t, domain.ModeAnalyzer, v.Mode())
}

func TestView_SubmitKeepsHistoryWhenServiceDoes(t *testing.T) {
	svc := &MockChatService{
		SubmitFunc: func(_ context.Context, _ string, _ domain.Mode, h domain.History) (string, domain.History) {
			return missingKey, h
		},
	}
	v := newReadyView(svc)
	v.SetQuery("hello")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	turn, ok := findTurn(runCmd(t, cmd))
	require.True(t, ok)
	v, _ = v.Update(turn)

	assert.Empty(t, v.Session().History)
	assert.Equal(t, missingKey, v.Transcript().Entries()[1].Content)
}

func TestView_NilServiceReportsError(t *testing.T) {
	v := newReadyView(nil)
	v.chatService = nil
	v.SetQuery("hello")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := runCmd(t, cmd)

	var errMsg messages.ErrorOccurred
	for _, m := range msgs {
		if e, ok := m.(messages.ErrorOccurred); ok {
			errMsg = e
		}
	}
	require.ErrorIs(t, errMsg.Err, ErrNoChatService)

	v, _ = v.Update(errMsg)
	assert.False(t, v.Busy())
	assert.ErrorIs(t, v.Err(), ErrNoChatService)
	assert.Equal(t, status.StateError, v.StatusBar().State())
}

func TestView_TabCyclesMode(t *testing.T) {
	v := newReadyView(&MockChatService{})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, domain.ModeDebugger, v.Mode())
	assert.Equal(t, domain.ModeDebugger, v.StatusBar().Mode())
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ModeChanged{Mode: domain.ModeDebugger}, cmd())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.ModeDeveloper, v.Mode())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.ModeAnalyzer, v.Mode())
}

func TestView_ModeIsSentWithQuery(t *testing.T) {
	svc := &MockChatService{}
	v := newReadyView(svc)
	v.SetMode(domain.ModeDeveloper)
	v.SetQuery("add a flag")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(t, cmd)

	assert.Equal(t, domain.ModeDeveloper, svc.lastMode)
}

func TestView_SettingsKey(t *testing.T) {
	v := newReadyView(&MockChatService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSettings}, cmd())
}

func TestView_ClearStartsNewSession(t *testing.T) {
	v := newReadyView(&MockChatService{})
	v.SetMode(domain.ModeDebugger)
	oldID := v.Session().ID
	v.Transcript().AddUser("hi")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.NotEqual(t, oldID, v.Session().ID)
	assert.Equal(t, domain.ModeDebugger, v.Mode())
	assert.Equal(t, 0, v.Transcript().Len())
}

func TestView_TypingGoesToInput(t *testing.T) {
	v := newReadyView(&MockChatService{})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("kq")})

	assert.Equal(t, "kq", v.Query())
}

func TestView_RendersHeaderAndMode(t *testing.T) {
	v := newReadyView(&MockChatService{})

	view := v.View()

	assert.Contains(t, view, "repochat")
	assert.Contains(t, view, "analyzer")
}

func TestView_SetNotice(t *testing.T) {
	v := newReadyView(&MockChatService{})

	v.SetNotice("API key saved")

	assert.Equal(t, "API key saved", v.StatusBar().Message())
	assert.Equal(t, status.StateReady, v.StatusBar().State())
}
