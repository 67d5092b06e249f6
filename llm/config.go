package llm

import (
	"time"

	"github.com/kbukum/subtitler/httpclient"
	"github.com/kbukum/subtitler/resilience"
)

const defaultTimeout = 120 * time.Second

// Config configures an Adapter.
type Config struct {
	// Name identifies the adapter in logs and spans. Defaults to "<dialect>-llm".
	Name string `yaml:"name" mapstructure:"name"`
	// Dialect must match a name passed to RegisterDialect.
	Dialect string `yaml:"dialect" mapstructure:"dialect"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
	// Temperature and MaxTokens apply to requests that leave them zero.
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`

	Headers map[string]string       `yaml:"-" mapstructure:"-"`
	Auth    *httpclient.AuthConfig  `yaml:"-" mapstructure:"-"`
	Retry   *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" && c.Dialect != "" {
		c.Name = c.Dialect + "-llm"
	}
}
