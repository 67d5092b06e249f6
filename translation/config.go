package translation

import (
	"fmt"
	"time"
)

const DefaultModel = "gpt-4-1106-preview"

// Config configures the chat model used for translation.
type Config struct {
	Model string `yaml:"model" mapstructure:"model" toml:"model"`
	// Temperature of 0 leaves the provider default.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" toml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens" toml:"max_tokens"`
	// Timeout bounds one completion call. Default 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" toml:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("translation.temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("translation.max_tokens must not be negative")
	}
	return nil
}
