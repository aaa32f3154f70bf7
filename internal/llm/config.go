package llm

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock", "none"
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`

	// Timeout bounds a single Generate call including retries. Default: 8s.
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether a generative provider is configured. With "none"
// callers use their rule-based fallbacks only.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// ProviderNone disables generation.
const ProviderNone = "none"

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "claude-haiku"
	BaseURL string `yaml:"base_url"` // Optional. Proxy or test server.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// RateLimitConfig caps outbound request rate. Zero RequestsPerSecond
// disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// DefaultConfig returns a Config with sensible defaults. Generation is off
// until a provider is chosen.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderNone,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     3 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Timeout: 8 * time.Second,
	}
}

// ConfigFromEnv is DefaultConfig with ApplyEnv applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overrides cfg with the VOXTUTOR_* LLM variables that are set.
// Unparsable durations and rates are ignored.
func ApplyEnv(cfg *Config) {
	for key, dst := range map[string]*string{
		"VOXTUTOR_LLM_PROVIDER":       &cfg.Provider,
		"VOXTUTOR_ANTHROPIC_API_KEY":  &cfg.Anthropic.APIKey,
		"VOXTUTOR_ANTHROPIC_MODEL":    &cfg.Anthropic.Model,
		"VOXTUTOR_OPENAI_API_KEY":     &cfg.OpenAI.APIKey,
		"VOXTUTOR_OPENAI_MODEL":       &cfg.OpenAI.Model,
		"VOXTUTOR_OPENAI_BASE_URL":    &cfg.OpenAI.BaseURL,
		"VOXTUTOR_GEMINI_API_KEY":     &cfg.Gemini.APIKey,
		"VOXTUTOR_GEMINI_MODEL":       &cfg.Gemini.Model,
		"VOXTUTOR_OPENROUTER_API_KEY": &cfg.OpenRouter.APIKey,
		"VOXTUTOR_OPENROUTER_MODEL":   &cfg.OpenRouter.Model,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if d, err := time.ParseDuration(os.Getenv("VOXTUTOR_LLM_TIMEOUT")); err == nil {
		cfg.Timeout = d
	}
	if f, err := strconv.ParseFloat(os.Getenv("VOXTUTOR_LLM_RPS"), 64); err == nil {
		cfg.RateLimit.RequestsPerSecond = f
	}
}

// discoveryOrder is the order vendor-standard key variables are probed in.
var discoveryOrder = []struct {
	env, provider string
	set           func(*Config, string)
}{
	{"GEMINI_API_KEY", "gemini", func(c *Config, k string) { c.Gemini.APIKey = k }},
	{"OPENAI_API_KEY", "openai", func(c *Config, k string) { c.OpenAI.APIKey = k }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, k string) { c.Anthropic.APIKey = k }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config, k string) { c.OpenRouter.APIKey = k }},
}

// DiscoverConfig returns a default Config for the first vendor whose
// standard API key variable is set.
func DiscoverConfig() (Config, bool) {
	for _, d := range discoveryOrder {
		if k := os.Getenv(d.env); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = d.provider
			d.set(&cfg, k)
			return cfg, true
		}
	}
	return Config{}, false
}

// apiKey returns the configured key for provider and whether it needs one.
func (c Config) apiKey(provider string) (key string, needed bool) {
	switch provider {
	case "anthropic":
		return c.Anthropic.APIKey, true
	case "openai":
		return c.OpenAI.APIKey, true
	case "gemini":
		return c.Gemini.APIKey, true
	case "openrouter":
		return c.OpenRouter.APIKey, true
	}
	return "", false
}

// Validate checks the provider name, its API key and the limits.
func (c Config) Validate() error {
	if _, known := vendors[c.Provider]; !known && c.Enabled() {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if key, needed := c.apiKey(c.Provider); needed && key == "" {
		return fmt.Errorf("VOXTUTOR_%s_API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	if c.Timeout < 0 {
		return errors.New("llm.timeout must not be negative")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return errors.New("llm.rate_limit.requests_per_second must not be negative")
	}
	return nil
}
