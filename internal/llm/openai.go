package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenAI returns a Client for the OpenAI chat completions API, or any
// compatible API when cfg.BaseURL is set.
func NewOpenAI(cfg OpenAIConfig) (*Client, error) {
	return newChatCompletions("openai", cfg.APIKey, cfg.Model, cfg.BaseURL)
}

// NewOpenRouter returns a Client for OpenRouter, which speaks the OpenAI
// chat completions protocol.
func NewOpenRouter(cfg OpenRouterConfig) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = openRouterBaseURL
	}
	return newChatCompletions("openrouter", cfg.APIKey, cfg.Model, base)
}

func newChatCompletions(vendor, key, model, baseURL string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("%s: api key is required", vendor)
	}
	conf := openai.DefaultConfig(key)
	if baseURL != "" {
		conf.BaseURL = baseURL
	}
	return &Client{
		vendor: vendor,
		model:  ResolveModel(model),
		api:    openaiAPI{sdk: openai.NewClientWithConfig(conf)},
	}, nil
}

type openaiAPI struct {
	sdk *openai.Client
}

func (a openaiAPI) complete(ctx context.Context, model string, req Request) (reply, error) {
	chat := openai.ChatCompletionRequest{
		Model:               model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return reply{}, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
	}

	resp, err := a.sdk.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return reply{}, fromStatus(apiErr.HTTPStatusCode, err)
		}
		return reply{}, Unavailable(err)
	}
	if len(resp.Choices) == 0 {
		return reply{}, invalid(nil, "chat completion has no choices")
	}

	choice := resp.Choices[0]
	out := reply{
		text:  choice.Message.Content,
		usage: newUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		model: resp.Model,
		stop:  StopEnd,
	}
	if choice.FinishReason == openai.FinishReasonLength {
		out.stop = StopMaxTokens
	}
	return out, nil
}
