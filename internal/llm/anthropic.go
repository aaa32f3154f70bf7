package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NewAnthropic returns a Client for the Anthropic Messages API.
func NewAnthropic(cfg AnthropicConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	// RetryProvider owns retries.
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	sdk := anthropic.NewClient(opts...)
	return &Client{vendor: "anthropic", model: ResolveModel(cfg.Model), api: anthropicAPI{sdk: &sdk}}, nil
}

type anthropicAPI struct {
	sdk *anthropic.Client
}

func (a anthropicAPI) complete(ctx context.Context, model string, req Request) (reply, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(req.MaxTokens),
	}
	for _, m := range req.Messages {
		block := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)}
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant, Content: block})
			continue
		}
		params.Messages = append(params.Messages, anthropic.MessageParam{Role: anthropic.MessageParamRoleUser, Content: block})
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := a.sdk.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return reply{}, fromStatus(apiErr.StatusCode, err)
		}
		return reply{}, Unavailable(err)
	}

	out := reply{
		usage: newUsage(int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)),
		model: string(msg.Model),
		stop:  StopEnd,
	}
	if msg.StopReason == "max_tokens" {
		out.stop = StopMaxTokens
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.text += block.Text
		}
	}
	if out.text == "" {
		return reply{}, invalid(nil, "anthropic reply has no text block")
	}
	return out, nil
}
