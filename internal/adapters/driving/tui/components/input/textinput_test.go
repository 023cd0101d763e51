package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryInput(t *testing.T) {
	f := NewQueryInput(nil)

	require.NotNil(t, f)
	assert.True(t, f.Focused())
	assert.False(t, f.Masked())
	assert.Equal(t, QueryCharLimit, f.textinput.CharLimit)
}

func TestNewSecretInput(t *testing.T) {
	f := NewSecretInput(nil)

	require.NotNil(t, f)
	assert.False(t, f.Focused())
	assert.True(t, f.Masked())
}

func TestSecretInput_ViewHidesValue(t *testing.T) {
	f := NewSecretInput(nil)
	f.Focus()
	f.SetValue("sk-secret-value")

	assert.Equal(t, "sk-secret-value", f.Value())
	assert.NotContains(t, f.View(), "sk-secret-value")
}

func TestField_TypingUpdatesValue(t *testing.T) {
	f := NewQueryInput(nil)

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("why")})

	assert.Equal(t, "why", f.Value())
}

func TestField_InitReturnsBlink(t *testing.T) {
	assert.NotNil(t, NewQueryInput(nil).Init())
}

func TestField_FocusAndBlur(t *testing.T) {
	f := NewQueryInput(nil)

	f.Blur()
	assert.False(t, f.Focused())

	f.Focus()
	assert.True(t, f.Focused())
}

func TestField_SetWidth(t *testing.T) {
	f := NewQueryInput(nil)

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 92, f.textinput.Width)

	f.SetWidth(5)
	assert.Equal(t, minInputWidth, f.textinput.Width)
}

func TestField_ResetAndLabel(t *testing.T) {
	f := NewQueryInput(nil)
	f.SetValue("something")
	f.SetLabel("[debugger] > ")

	f.Reset()

	assert.Empty(t, f.Value())
	assert.Contains(t, f.View(), "[debugger] >")
}
