package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_ReplaysScriptInOrder(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"message":"uno","tone":"warm"}`), Usage: Usage{InputTokens: 3}},
		MockResponse{Content: json.RawMessage(`{"message":"dos","tone":"calm"}`)},
	)
	ctx := context.Background()

	first, err := m.Generate(ctx, tutorRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"uno","tone":"warm"}`, string(first.Content))
	assert.Equal(t, 3, first.Usage.InputTokens)
	assert.Equal(t, "mock", first.Model)

	second, err := m.Generate(ctx, tutorRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"dos","tone":"calm"}`, string(second.Content))

	_, err = m.Generate(ctx, tutorRequest())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, "coach-encourage", m.Calls[0].Purpose)
}

func TestMock_ScriptedError(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockProvider(MockResponse{Err: boom})
	_, err := m.Generate(context.Background(), tutorRequest())
	assert.Same(t, boom, err)
}

func TestMock_SynthesizesFromSchema(t *testing.T) {
	m := &MockProvider{Synthesize: true}
	m.AddResponse(MockResponse{Content: json.RawMessage(`{"message":"scripted","tone":"playful"}`)})

	resp, err := m.Generate(context.Background(), tutorRequest())
	require.NoError(t, err)
	assert.Contains(t, string(resp.Content), "scripted")

	resp, err = m.Generate(context.Background(), tutorRequest())
	require.NoError(t, err)
	assert.NoError(t, replySchema.Validate(resp.Content))

	req := tutorRequest()
	req.Schema = nil
	_, err = m.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMock_ConcurrentCalls(t *testing.T) {
	m := &MockProvider{Synthesize: true}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Generate(context.Background(), tutorRequest())
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, m.CallCount())
}
