// Package config loads voxtutor settings from a YAML file, the environment
// and built-in defaults, in increasing order of precedence: defaults, file,
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/voxtutor/internal/coach"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/llm"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/statestore"
)

// Config is the full application configuration.
type Config struct {
	Engagement engagement.Weights `yaml:"engagement"`
	Planner    planner.Weights    `yaml:"planner"`
	Persona    persona.Thresholds `yaml:"persona"`
	Coach      coach.Config       `yaml:"coach"`
	LLM        llm.Config         `yaml:"llm"`
	Store      StoreConfig        `yaml:"store"`
	State      statestore.Config  `yaml:"state"`
	Server     ServerConfig       `yaml:"server"`
	Log        LogConfig          `yaml:"log"`

	// Workers bounds parallel batch analysis.
	Workers int `yaml:"workers"`

	// Seed makes fallback phrase selection reproducible. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	// Path is the database file. Empty resolves to the default data dir.
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Engagement: engagement.DefaultWeights(),
		Planner:    planner.DefaultWeights(),
		Persona:    persona.DefaultThresholds(),
		Coach:      coach.DefaultConfig(),
		LLM:        llm.DefaultConfig(),
		State:      statestore.DefaultConfig(),
		Server: ServerConfig{
			Addr:         "127.0.0.1:8088",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Workers: 4,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/voxtutor/config.yaml, falling back to
// ~/.config/voxtutor/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "voxtutor.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "voxtutor", "config.yaml")
}

// LoadDotEnv loads variables from a .env file in the working directory when
// one exists. Variables already set in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads configuration from path. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	llm.ApplyEnv(&c.LLM)
	if !c.LLM.Enabled() {
		if discovered, ok := llm.DiscoverConfig(); ok {
			c.LLM.Provider = discovered.Provider
			c.LLM.Anthropic.APIKey = discovered.Anthropic.APIKey
			c.LLM.OpenAI.APIKey = discovered.OpenAI.APIKey
			c.LLM.Gemini.APIKey = discovered.Gemini.APIKey
			c.LLM.OpenRouter.APIKey = discovered.OpenRouter.APIKey
		}
	}

	if v := os.Getenv("VOXTUTOR_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("VOXTUTOR_STATE_BACKEND"); v != "" {
		c.State.Backend = v
	}
	if v := os.Getenv("VOXTUTOR_STATE_PATH"); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv("VOXTUTOR_REDIS_ADDR"); v != "" {
		c.State.RedisAddr = v
	}
	if v := os.Getenv("VOXTUTOR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VOXTUTOR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VOXTUTOR_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("VOXTUTOR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if err := c.Engagement.Validate(); err != nil {
		return fmt.Errorf("engagement: %w", err)
	}
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if err := c.Persona.Validate(); err != nil {
		return err
	}
	if err := c.Coach.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
