package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/voxtutor/internal/statestore"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "VOXTUTOR_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearLLMEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	clearLLMEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
engagement:
  critical_threshold: 20
planner:
  recent_window: 3
persona:
  cooldown_turns: 4
llm:
  provider: mock
  timeout: 2s
state:
  backend: badger
  path: /tmp/voxtutor-state
server:
  addr: ":9000"
workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20.0, cfg.Engagement.CriticalThreshold)
	assert.Equal(t, 3, cfg.Planner.RecentWindow)
	assert.Equal(t, 4, cfg.Persona.CooldownTurns)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 2*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, statestore.BackendBadger, cfg.State.Backend)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Workers)

	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultConfig().Planner.HistoryWeight, cfg.Planner.HistoryWeight)
	assert.Equal(t, DefaultConfig().Engagement.BaselineScore, cfg.Engagement.BaselineScore)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("VOXTUTOR_WORKERS", "2")
	t.Setenv("VOXTUTOR_STATE_BACKEND", "redis")
	t.Setenv("VOXTUTOR_REDIS_ADDR", "cache:6379")
	t.Setenv("VOXTUTOR_DB", "/data/tutor.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "redis", cfg.State.Backend)
	assert.Equal(t, "cache:6379", cfg.State.RedisAddr)
	assert.Equal(t, "/data/tutor.db", cfg.Store.Path)
	require.NoError(t, cfg.Validate())
}

func TestDiscoveredProviderKey(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-found")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-found", cfg.LLM.OpenAI.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	clearLLMEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Workers = 6
	cfg.Log.Format = "json"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"no server addr", func(c *Config) { c.Server.Addr = "" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "pigeon" }},
		{"redis without addr", func(c *Config) { c.State.Backend = statestore.BackendRedis }},
		{"negative cooldown", func(c *Config) { c.Persona.CooldownTurns = -1 }},
		{"bad latency thresholds", func(c *Config) { c.Engagement.SlowLatencyMs = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
