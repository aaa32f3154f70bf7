package coach

import (
	"fmt"
	"time"
)

// Config holds coach generation settings.
type Config struct {
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DefaultConfig returns sensible defaults for short spoken replies.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   160,
		Temperature: 0.7,
		Timeout:     4 * time.Second,
	}
}

// Validate checks the settings are usable.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("coach.max_tokens must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("coach.temperature must be within 0..1")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("coach.timeout must not be negative")
	}
	return nil
}
