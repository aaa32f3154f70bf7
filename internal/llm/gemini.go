package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// NewGemini returns a Client for the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{vendor: "gemini", model: ResolveModel(cfg.Model), api: geminiAPI{sdk: sdk}}, nil
}

type geminiAPI struct {
	sdk *genai.Client
}

func (a geminiAPI) complete(ctx context.Context, model string, req Request) (reply, error) {
	conf := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		conf.Temperature = &t
	}
	if req.System != "" {
		conf.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Schema != nil {
		conf.ResponseMIMEType = "application/json"
		conf.ResponseSchema = geminiSchema(req.Schema.Definition)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}})
	}

	res, err := a.sdk.Models.GenerateContent(ctx, model, contents, conf)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return reply{}, fromStatus(apiErr.Code, err)
		}
		return reply{}, Unavailable(err)
	}

	out := reply{text: res.Text(), stop: StopEnd}
	if len(res.Candidates) > 0 && res.Candidates[0].FinishReason == "MAX_TOKENS" {
		out.stop = StopMaxTokens
	}
	if u := res.UsageMetadata; u != nil {
		out.usage = newUsage(int(u.PromptTokenCount), int(u.CandidatesTokenCount))
	}
	return out, nil
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// geminiSchema converts the subset of JSON Schema the tutor's reply schemas
// use. Unknown types become strings.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeString}
	if t, ok := geminiTypes[stringField(def, "type")]; ok {
		s.Type = t
	}
	s.Description = stringField(def, "description")
	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if sub, ok := p.(map[string]any); ok {
				s.Properties[name] = geminiSchema(sub)
			}
		}
	}
	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	return s
}

func stringField(def map[string]any, key string) string {
	s, _ := def[key].(string)
	return s
}

// stringList accepts []any and []string.
func stringList(v any) []string {
	switch vs := v.(type) {
	case []string:
		return append([]string(nil), vs...)
	case []any:
		var out []string
		for _, x := range vs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
