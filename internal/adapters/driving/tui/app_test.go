package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{Chat: &MockChatService{}})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(&Ports{Chat: &MockChatService{}})

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingChatService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(&Ports{Chat: &MockChatService{}})

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Same(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(&Ports{Chat: &MockChatService{}})

	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app, _ := NewApp(&Ports{Chat: &MockChatService{}})

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, model.(*App).Ready())
	assert.Equal(t, 120, app.ChatView().Width())
	assert.Equal(t, 120, app.SettingsView().Width())
}

func TestApp_QuitKey(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_ChatTurnRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.ChatView().SetQuery("what does main do")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.ChatView().Busy())

	app.Update(messages.TurnCompleted{
		Query:   "what does main do",
		Display: "ok",
		History: domain.History{{Query: "what does main do", DisplayResponse: "ok"}},
	})

	assert.False(t, app.ChatView().Busy())
	assert.Len(t, app.ChatView().Session().History, 1)
}

func TestApp_NavigateToSettingsAndBack(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewSettings, app.CurrentView())
	assert.Equal(t, settings.SectionOverview, app.SettingsView().Section())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t)

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	view := app.View()
	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "analyzer")
	assert.Contains(t, view, "developer")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_HelpReturnsToSettings(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewSettings})

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	require.Equal(t, messages.ViewHelp, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewSettings, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)
	err := errors.New("connection refused")

	app.Update(messages.ErrorOccurred{Err: err})

	assert.Equal(t, err, app.Err())
	assert.Equal(t, err, app.ChatView().Err())
}

func TestApp_APIKeySavedNotifiesChat(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.APIKeySaved{})

	assert.Equal(t, "API key saved", app.ChatView().StatusBar().Message())
}

func TestApp_SettingsLoadedForwarded(t *testing.T) {
	app := newTestApp(t)
	s := domain.DefaultAppSettings()

	app.Update(messages.SettingsLoaded{Settings: &s})

	assert.Equal(t, &s, app.SettingsView().Settings())
}

func TestApp_ViewRendersChat(t *testing.T) {
	app := newTestApp(t)

	assert.Contains(t, app.View(), "repochat")
}
