package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// flakyConnector fails a fixed number of times before succeeding.
type flakyConnector struct {
	failures int
	calls    int
	index    driven.VectorIndex
}

func (f *flakyConnector) Connect(_ context.Context) (driven.VectorIndex, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("not yet")
	}
	return f.index, nil
}

// hangingConnector blocks until its context ends, like a dial to a dead host.
type hangingConnector struct {
	calls int
}

func (h *hangingConnector) Connect(ctx context.Context) (driven.VectorIndex, error) {
	h.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGroundingAssembler_SkipsUnreadable(t *testing.T) {
	reader := &mockFileReader{files: map[string]string{"a": "A", "b": "B"}}
	g := NewGroundingAssembler(reader)

	out := g.Build([]string{"a", "missing", "b"})

	assert.Equal(t, "A\nB\n", out)
	assert.Equal(t, []string{"a", "missing", "b"}, reader.reads)
}

func TestGroundingAssembler_AllUnreadableIsUngrounded(t *testing.T) {
	g := NewGroundingAssembler(&mockFileReader{})

	assert.Equal(t, "", g.Build([]string{"x", "y"}))
	assert.Equal(t, "", g.Build(nil))
}

func TestPromptSelector_EveryModeHasTemplate(t *testing.T) {
	s := NewPromptSelector(newMockPromptStore())

	for _, m := range domain.AllModes() {
		tmpl, err := s.Select(m)
		require.NoError(t, err, m.String())
		assert.NotEmpty(t, tmpl)
	}
}

func TestPromptSelector_InvalidMode(t *testing.T) {
	s := NewPromptSelector(newMockPromptStore())

	for _, m := range []domain.Mode{0, 4, -1} {
		_, err := s.Select(m)
		assert.ErrorIs(t, err, domain.ErrInvalidMode)
	}
}

func TestPromptSelector_StoreError(t *testing.T) {
	s := NewPromptSelector(&mockPromptStore{loadErr: errors.New("disk")})

	_, err := s.Select(domain.ModeAnalyzer)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidMode)
}

func TestMessages(t *testing.T) {
	grounded := Messages("q", "doc\n", "sys")
	require.Len(t, grounded, 3)
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleSystem, Content: "sys"}, grounded[0])
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "Relevant documents:\ndoc\n"}, grounded[1])
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "q"}, grounded[2])

	ungrounded := Messages("q", "", "sys")
	require.Len(t, ungrounded, 2)
	assert.Equal(t, "q", ungrounded[1].Content)
}

func TestResponseGenerator_RecreatesClientOnKeyChange(t *testing.T) {
	llm := &mockLLM{response: "ok"}
	factory := &mockLLMFactory{llm: llm}
	creds := &mockCredentials{key: "k1"}
	g := NewResponseGenerator(domain.DefaultAppSettings().LLM, creds, factory)

	_, err := g.Generate(context.Background(), "q", "", "sys")
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "q", "", "sys")
	require.NoError(t, err)
	creds.key = "k2"
	_, err = g.Generate(context.Background(), "q", "", "sys")
	require.NoError(t, err)

	assert.Equal(t, []string{"k1", "k2"}, factory.keys)
	require.NoError(t, g.Close())
	assert.True(t, llm.isClosed())
}

func TestResponseGenerator_KeyChangeWaitsForInFlightCall(t *testing.T) {
	slow := newBlockingLLM()
	fresh := &mockLLM{response: "fresh"}
	factory := &sequenceFactory{llms: []driven.LLMService{slow, fresh}}
	creds := &mockCredentials{key: "k1"}
	g := NewResponseGenerator(domain.DefaultAppSettings().LLM, creds, factory)

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), "q", "", "sys")
		done <- err
	}()
	<-slow.started

	creds.key = "k2"
	out, err := g.Generate(context.Background(), "q", "", "sys")
	require.NoError(t, err)
	assert.Equal(t, "fresh", out)
	assert.False(t, slow.isClosed(), "client closed while a call was using it")

	close(slow.release)
	require.NoError(t, <-done)
	assert.True(t, slow.isClosed())
	assert.False(t, fresh.isClosed())

	require.NoError(t, g.Close())
	assert.True(t, fresh.isClosed())
	assert.Equal(t, []string{"k1", "k2"}, factory.keys)
}

func TestResponseGenerator_CloseWaitsForInFlightCall(t *testing.T) {
	slow := newBlockingLLM()
	g := NewResponseGenerator(domain.DefaultAppSettings().LLM, &mockCredentials{key: "k1"},
		&sequenceFactory{llms: []driven.LLMService{slow}})

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), "q", "", "sys")
		done <- err
	}()
	<-slow.started

	require.NoError(t, g.Close())
	assert.False(t, slow.isClosed())

	close(slow.release)
	require.NoError(t, <-done)
	assert.True(t, slow.isClosed())
}

func TestResponseGenerator_LocalProviderNeedsNoKey(t *testing.T) {
	factory := &mockLLMFactory{llm: &mockLLM{response: "local"}}
	settings := domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}
	g := NewResponseGenerator(settings, &mockCredentials{}, factory)

	require.NoError(t, g.Ready())
	out, err := g.Generate(context.Background(), "q", "", "sys")
	require.NoError(t, err)
	assert.Equal(t, "local", out)
}

func TestResponseGenerator_Errors(t *testing.T) {
	settings := domain.DefaultAppSettings().LLM

	g := NewResponseGenerator(settings, &mockCredentials{}, &mockLLMFactory{llm: &mockLLM{}})
	_, err := g.Generate(context.Background(), "q", "", "sys")
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	g = NewResponseGenerator(settings, &mockCredentials{key: "k"}, &mockLLMFactory{createErr: errors.New("bad url")})
	_, err = g.Generate(context.Background(), "q", "", "sys")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	g = NewResponseGenerator(settings, &mockCredentials{key: "k"}, &mockLLMFactory{llm: &mockLLM{chatErr: errors.New("429")}})
	_, err = g.Generate(context.Background(), "q", "", "sys")
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestInterpret(t *testing.T) {
	raw := "noise\n--- BEGIN FILE: a.py ---\nprint(1)\n--- END FILE: a.py ---\nmore noise"

	for _, m := range []domain.Mode{domain.ModeAnalyzer, domain.ModeDebugger} {
		got, err := Interpret(m, raw)
		require.NoError(t, err)
		assert.Equal(t, raw, got.Display)
		assert.Empty(t, got.Edits)
	}

	dev, err := Interpret(domain.ModeDeveloper, raw)
	require.NoError(t, err)
	assert.Equal(t, []domain.FileEdit{{Path: "a.py", Content: "print(1)"}}, dev.Edits)
	assert.NotContains(t, dev.Display, "noise")

	empty, err := Interpret(domain.ModeDeveloper, "no files here")
	require.NoError(t, err)
	assert.Equal(t, "", empty.Display)

	_, err = Interpret(domain.Mode(9), raw)
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}
