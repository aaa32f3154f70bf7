// Package llm sends tutor prompts to a hosted language model and returns
// schema-checked JSON. Vendors sit behind Provider; timeouts, retries, rate
// limiting and request logging are decorators around it.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion.
type Provider interface {
	// Generate sends req and returns its content. With req.Schema set the
	// content has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Model is the model identifier requests are sent to.
	Model() string
}

// Request is a single prompt.
type Request struct {
	// Purpose labels the call in logs and the request log, e.g.
	// "coach-encourage". Empty is recorded as "unknown".
	Purpose string

	System   string
	Messages []Message

	// Schema asks the vendor for structured output. Without it the content
	// is the reply text encoded as a JSON string.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

func (r Request) purpose() string {
	if r.Purpose == "" {
		return "unknown"
	}
	return r.Purpose
}

// Message is one turn of prompt history.
type Message struct {
	Role    Role
	Content string
}

// Role is who said a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason is why a completion ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a finished completion.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
