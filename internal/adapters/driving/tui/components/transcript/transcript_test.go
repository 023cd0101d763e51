package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tr := New(nil)

	require.NotNil(t, tr)
	assert.NotNil(t, tr.styles)
	assert.NotNil(t, tr.renderer)
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Content())
}

func TestTranscript_AddEntries(t *testing.T) {
	tr := New(nil)

	tr.AddUser("where is main")
	tr.AddAssistant("It lives in cmd.")
	tr.AddNotice("Mode: debugger")

	require.Equal(t, 3, tr.Len())
	assert.Equal(t, RoleUser, tr.Entries()[0].Role)
	assert.Equal(t, RoleAssistant, tr.Entries()[1].Role)
	assert.Equal(t, RoleNotice, tr.Entries()[2].Role)

	content := tr.Content()
	assert.Contains(t, content, "You")
	assert.Contains(t, content, "where is main")
	assert.Contains(t, content, "lives")
	assert.Contains(t, content, "Mode: debugger")
}

func TestTranscript_AssistantMarkdownRendered(t *testing.T) {
	for _, style := range []string{DarkMarkdown, LightMarkdown} {
		t.Run(style, func(t *testing.T) {
			tr := New(nil)
			tr.SetMarkdownStyle(style)

			tr.AddAssistant("# Heading\n\nSome **bold** text")

			content := tr.Content()
			assert.Contains(t, content, "Heading")
			assert.Contains(t, content, "bold")
			assert.NotContains(t, content, "**bold**")
		})
	}
}

func TestTranscript_SetMarkdownStyle(t *testing.T) {
	tr := New(nil)
	tr.SetSize(60, 10)

	tr.SetMarkdownStyle(LightMarkdown)

	assert.Equal(t, LightMarkdown, tr.mdStyle)
	assert.Equal(t, 60, tr.width)
	assert.NotNil(t, tr.renderer)
}

func TestTranscript_Clear(t *testing.T) {
	tr := New(nil)
	tr.AddUser("hi")

	tr.Clear()

	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Content())
}

func TestTranscript_SetSize(t *testing.T) {
	tr := New(nil)
	tr.AddAssistant("reply")

	tr.SetSize(120, 30)

	assert.Equal(t, 120, tr.viewport.Width)
	assert.Equal(t, 30, tr.viewport.Height)
	assert.Equal(t, 120, tr.width)
	assert.NotEmpty(t, tr.View())
}

func TestTranscript_MarkdownFallback(t *testing.T) {
	tr := New(nil)
	tr.renderer = nil

	assert.Equal(t, "plain\n", tr.markdown("plain"))
}

func TestTranscript_Scroll(t *testing.T) {
	tr := New(nil)
	tr.SetSize(40, 2)
	for range 10 {
		tr.AddNotice("line")
	}
	assert.True(t, tr.viewport.AtBottom())

	tr.ScrollUp()
	assert.False(t, tr.viewport.AtBottom())

	tr.ScrollDown()
	tr.ScrollDown()
	assert.True(t, tr.viewport.AtBottom())
}
