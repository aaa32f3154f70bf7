package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// backend is the vendor-specific half of a Client: it translates a Request
// into one API call and reports what came back.
type backend interface {
	complete(ctx context.Context, model string, req Request) (reply, error)
}

type reply struct {
	text  string
	usage Usage
	// model is the model that served the call, when the vendor reports it.
	model string
	stop  StopReason
}

// Client is a Provider for a hosted vendor API. Construct one with
// NewAnthropic, NewOpenAI, NewOpenRouter or NewGemini.
type Client struct {
	vendor string
	model  string
	api    backend
}

// Vendor is the provider name, e.g. "anthropic".
func (c *Client) Vendor() string { return c.vendor }

// Model implements Provider.
func (c *Client) Model() string { return c.model }

// Generate implements Provider.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("llm: request has no messages")
	}
	r, err := c.api.complete(ctx, c.model, req)
	if err != nil {
		return nil, err
	}

	resp := &Response{Usage: r.usage, Model: r.model, StopReason: r.stop}
	if resp.Model == "" {
		resp.Model = c.model
	}
	if resp.StopReason == "" {
		resp.StopReason = StopEnd
	}

	if req.Schema == nil {
		resp.Content, _ = json.Marshal(r.text)
		return resp, nil
	}
	content := json.RawMessage(unfence(r.text))
	if resp.StopReason == StopMaxTokens {
		return nil, &Error{
			Kind:    KindTruncated,
			Content: content,
			Err:     fmt.Errorf("%s reply for %s hit %d tokens", c.vendor, req.Schema.Name, req.MaxTokens),
		}
	}
	if err := req.Schema.Validate(content); err != nil {
		return nil, err
	}
	resp.Content = content
	return resp, nil
}

// unfence strips a markdown code fence some models put around JSON.
func unfence(s string) []byte {
	b := bytes.TrimSpace([]byte(s))
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	} else {
		b = b[3:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

// modelAliases maps the short names accepted in config to vendor model ids.
// Anything else is sent as given.
var modelAliases = map[string]string{
	"claude-haiku":  "claude-haiku-4-5",
	"claude-sonnet": "claude-sonnet-4-5",
	"gpt-mini":      "gpt-4.1-mini",
	"gpt-nano":      "gpt-4.1-nano",
	"gemini-flash":  "gemini-2.5-flash",
	"gemini-lite":   "gemini-2.5-flash-lite",
	"gemini-pro":    "gemini-2.5-pro",
}

// ResolveModel expands a configured model alias.
func ResolveModel(name string) string {
	if id, ok := modelAliases[name]; ok {
		return id
	}
	return name
}
