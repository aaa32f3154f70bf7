package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/store"
)

// vendors builds the undecorated provider for each configurable name.
var vendors = map[string]func(ctx context.Context, cfg Config) (Provider, error){
	"anthropic": func(_ context.Context, cfg Config) (Provider, error) { return NewAnthropic(cfg.Anthropic) },
	"openai":    func(_ context.Context, cfg Config) (Provider, error) { return NewOpenAI(cfg.OpenAI) },
	"openrouter": func(_ context.Context, cfg Config) (Provider, error) {
		return NewOpenRouter(cfg.OpenRouter)
	},
	"gemini": func(ctx context.Context, cfg Config) (Provider, error) { return NewGemini(ctx, cfg.Gemini) },
	"mock":   func(context.Context, Config) (Provider, error) { return &MockProvider{Synthesize: true}, nil },
}

// NewProvider builds the configured provider wrapped, outermost first, in
// timeout, retry, rate limiting and logging. It returns nil, nil when
// generation is disabled. events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *zap.Logger) (Provider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	build, ok := vendors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	p, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	p = WithLogging(p, cfg.Provider, events, log)
	p = WithRateLimit(p, cfg.RateLimit)
	p = WithRetry(p, cfg.Retry, log)
	return WithTimeout(p, cfg.Timeout), nil
}
