package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	require.Error(t, err)

	svc, err := NewLLMService(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestConvertMessages(t *testing.T) {
	system, contents := convertMessages([]driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "analyze"},
		{Role: driven.RoleUser, Content: "question"},
		{Role: driven.RoleAssistant, Content: "answer"},
	})

	assert.Equal(t, "analyze", system)
	require.Len(t, contents, 2)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 1)
	assert.Equal(t, "answer", contents[1].Parts[0].Text)
}
