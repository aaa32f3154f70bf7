package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and records every request.
// With Synthesize set, structured requests that find the script empty are
// answered with the schema's Example, which keeps offline demo sessions on
// the generative path.
type MockProvider struct {
	Synthesize bool

	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

// NewMockProvider returns a mock that replays script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

var errScriptEmpty = errors.New("mock script exhausted")

// Generate implements Provider.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.Synthesize && req.Schema != nil:
		next.Content = req.Schema.Example()
	default:
		return nil, Unavailable(errScriptEmpty)
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: StopEnd}, nil
}

// Model implements Provider.
func (m *MockProvider) Model() string { return "mock" }

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, r)
	m.mu.Unlock()
}

// CallCount is the number of Generate calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
