package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

var fastRetry = RetryPolicy{Attempts: 2, Delay: time.Millisecond}

type pipeline struct {
	svc     *ChatService
	index   *memory.VectorIndex
	llm     *mockLLM
	factory *mockLLMFactory
	reader  *mockFileReader
}

func newPipeline(t *testing.T, key string) *pipeline {
	t.Helper()

	idx := memory.NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.CreateCollection(ctx, 2))
	require.NoError(t, idx.Insert(ctx, []domain.IndexEntry{
		{Path: "/proj/main.go", Vector: []float32{1, 0}},
		{Path: "/proj/util.go", Vector: []float32{0, 1}},
		{Path: "/proj/gone.go", Vector: []float32{1, 1}},
	}))

	embedder := &mockEmbeddingService{vectors: map[string][]float32{
		"what does main do?": {0.9, 0.1},
	}, fallback: []float32{0, 0}}

	reader := &mockFileReader{files: map[string]string{
		"/proj/main.go": "package main",
		"/proj/util.go": "package util",
	}}
	llm := &mockLLM{response: "It prints hello."}
	factory := &mockLLMFactory{llm: llm}

	settings := domain.DefaultAppSettings().LLM
	svc := NewChatService(
		NewRetriever(idx, embedder, 3, fastRetry),
		NewGroundingAssembler(reader),
		NewPromptSelector(newMockPromptStore()),
		NewResponseGenerator(settings, &mockCredentials{key: key}, factory),
	)

	return &pipeline{svc: svc, index: idx, llm: llm, factory: factory, reader: reader}
}

func TestChatService_Submit_GroundedAnswer(t *testing.T) {
	p := newPipeline(t, "sk-test")

	display, history := p.svc.Submit(context.Background(), "what does main do?", domain.ModeAnalyzer, nil)

	assert.Equal(t, "It prints hello.", display)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ConversationTurn{Query: "what does main do?", DisplayResponse: "It prints hello."}, history[0])

	require.Equal(t, 1, p.llm.calls())
	msgs := p.llm.requests[0]
	require.Len(t, msgs, 3)
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "analyzer")
	// gone.go is indexed but no longer on disk, so it is skipped.
	assert.Equal(t, "Relevant documents:\npackage main\npackage util\n", msgs[1].Content)
	assert.Equal(t, []string{"/proj/main.go", "/proj/gone.go", "/proj/util.go"}, p.reader.reads)
	assert.Equal(t, "what does main do?", msgs[2].Content)
	assert.InDelta(t, 0.7, p.llm.opts[0].Temperature, 1e-9)
	assert.Equal(t, []string{"sk-test"}, p.factory.keys)
}

func TestChatService_Submit_MissingCredential(t *testing.T) {
	p := newPipeline(t, "")
	history := domain.History{{Query: "earlier", DisplayResponse: "answer"}}

	display, got := p.svc.Submit(context.Background(), "anything", domain.ModeDebugger, history)

	assert.Equal(t, MissingCredentialMessage, display)
	assert.Equal(t, history, got)
	assert.Zero(t, p.llm.calls())
	assert.Empty(t, p.factory.keys)
	assert.Zero(t, p.index.Connects, "no retrieval without a credential")
}

func TestChatService_Submit_DegradedRetrieval(t *testing.T) {
	p := newPipeline(t, "sk-test")
	p.index.ConnectErr = errors.New("connection refused")

	display, history := p.svc.Submit(context.Background(), "what does main do?", domain.ModeAnalyzer, nil)

	assert.NotEmpty(t, display)
	assert.Equal(t, "It prints hello.", display)
	assert.Len(t, history, 1)
	assert.Equal(t, fastRetry.Attempts, p.index.Connects)

	require.Equal(t, 1, p.llm.calls())
	msgs := p.llm.requests[0]
	require.Len(t, msgs, 2, "ungrounded request has no documents message")
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Equal(t, "what does main do?", msgs[1].Content)
}

func TestChatService_Submit_MissingCollectionIsUngrounded(t *testing.T) {
	p := newPipeline(t, "sk-test")
	require.NoError(t, p.index.DropCollection(context.Background()))

	display, _ := p.svc.Submit(context.Background(), "what does main do?", domain.ModeAnalyzer, nil)

	assert.Equal(t, "It prints hello.", display)
	assert.Len(t, p.llm.requests[0], 2)
	assert.Empty(t, p.reader.reads)
}

func TestChatService_Submit_GenerationError(t *testing.T) {
	p := newPipeline(t, "sk-test")
	p.llm.chatErr = errors.New("503 from upstream")

	display, history := p.svc.Submit(context.Background(), "q", domain.ModeAnalyzer, nil)

	assert.Equal(t, GenericErrorMessage, display)
	require.Len(t, history, 1)
	assert.Equal(t, GenericErrorMessage, history[0].DisplayResponse)
}

func TestChatService_Submit_InvalidModeLeavesHistory(t *testing.T) {
	p := newPipeline(t, "sk-test")

	display, history := p.svc.Submit(context.Background(), "q", domain.Mode(42), nil)

	assert.Contains(t, display, "invalid mode")
	assert.Empty(t, history)
	assert.Zero(t, p.llm.calls())
}

func TestChatService_Submit_DeveloperRendersEdits(t *testing.T) {
	p := newPipeline(t, "sk-test")
	p.llm.response = "Sure.\n--- BEGIN FILE: a.py ---\nprint(1)\n--- END FILE: a.py ---\nDone."

	display, history := p.svc.Submit(context.Background(), "add a print", domain.ModeDeveloper, nil)

	assert.Equal(t, "### a.py\n```\nprint(1)\n```\n", display)
	assert.Equal(t, display, history[0].DisplayResponse)
}

func TestChatService_Submit_DoesNotFeedHistory(t *testing.T) {
	p := newPipeline(t, "sk-test")
	history := domain.History{{Query: "secret earlier question", DisplayResponse: "secret earlier answer"}}

	_, _ = p.svc.Submit(context.Background(), "now", domain.ModeAnalyzer, history)

	for _, m := range p.llm.requests[0] {
		assert.NotContains(t, m.Content, "secret earlier")
	}
}

func TestChatService_Ask_ReturnsEdits(t *testing.T) {
	p := newPipeline(t, "sk-test")
	p.llm.response = "--- BEGIN FILE: a.py ---\nX\n--- BEGIN FILE: b.py ---\nY\n--- END FILE: b.py ---"

	interp, err := p.svc.Ask(context.Background(), "change", domain.ModeDeveloper)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.py": "X", "b.py": "Y"}, interp.EditMap())
}

func TestChatService_Ask_PropagatesErrors(t *testing.T) {
	p := newPipeline(t, "")

	_, err := p.svc.Ask(context.Background(), "q", domain.ModeAnalyzer)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	_, err = p.svc.Ask(context.Background(), "q", domain.Mode(0))
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}
