package app

import (
	"fmt"
	"time"

	"github.com/kbukum/subtitler/config"
	"github.com/kbukum/subtitler/history"
	"github.com/kbukum/subtitler/media"
	"github.com/kbukum/subtitler/observability"
	"github.com/kbukum/subtitler/resilience"
	"github.com/kbukum/subtitler/server"
	"github.com/kbukum/subtitler/storage"
	"github.com/kbukum/subtitler/transcription/whisper"
	"github.com/kbukum/subtitler/translation"
	"github.com/kbukum/subtitler/util"
	"github.com/kbukum/subtitler/validation"
)

// ServiceName is the config file and environment prefix base.
const ServiceName = "subtitler"

// OpenAIConfig holds the credentials shared by transcription and
// translation.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key" toml:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url" toml:"base_url" validate:"omitempty,url"`
}

// RetryConfig enables HTTP-level retry of retryable remote failures.
type RetryConfig struct {
	Enabled                bool `yaml:"enabled" mapstructure:"enabled" toml:"enabled"`
	resilience.RetryConfig `yaml:",inline" mapstructure:",squash"`
}

// PipelineConfig bounds concurrent runs.
type PipelineConfig struct {
	// MaxConcurrent is the number of simultaneous runs. Zero is unbounded.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent" toml:"max_concurrent" validate:"gte=0"`
	// QueueWait is how long a run waits for a slot before SERVICE_UNAVAILABLE.
	QueueWait time.Duration `yaml:"queue_wait" mapstructure:"queue_wait" toml:"queue_wait"`
}

// Config is the full application configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server" toml:"server"`
	OpenAI        OpenAIConfig         `yaml:"openai" mapstructure:"openai" toml:"openai"`
	Transcription whisper.Config       `yaml:"transcription" mapstructure:"transcription" toml:"transcription"`
	Translation   translation.Config   `yaml:"translation" mapstructure:"translation" toml:"translation"`
	Media         media.Config         `yaml:"media" mapstructure:"media" toml:"media"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage" toml:"storage"`
	History       history.Config       `yaml:"history" mapstructure:"history" toml:"history"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability" toml:"observability"`
	Retry         RetryConfig          `yaml:"retry" mapstructure:"retry" toml:"retry"`
	Pipeline      PipelineConfig       `yaml:"pipeline" mapstructure:"pipeline" toml:"pipeline"`
}

// ApplyDefaults fills every section. Transcription inherits the openai
// credentials unless it sets its own.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = c.OpenAI.APIKey
	}
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = c.OpenAI.BaseURL
	}
	c.Transcription.ApplyDefaults()
	c.Translation.ApplyDefaults()
	c.Media.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.History.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Pipeline.QueueWait == 0 {
		c.Pipeline.QueueWait = 30 * time.Second
	}
}

// Validate checks every section. A missing API key is not an error: remote
// calls fail with an auth error instead.
func (c *Config) Validate() error {
	checks := []struct {
		section string
		fn      func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"transcription", c.Transcription.Validate},
		{"translation", c.Translation.Validate},
		{"media", c.Media.Validate},
		{"storage", c.Storage.Validate},
		{"history", c.History.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s: %w", check.section, err)
		}
	}
	if c.Retry.Enabled && c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must not be negative")
	}
	return validation.Validate(c)
}

// RetryPolicy returns the HTTP retry policy, or nil when retry is off.
func (c *Config) RetryPolicy() *resilience.RetryConfig {
	if !c.Retry.Enabled {
		return nil
	}
	policy := c.Retry.RetryConfig
	return &policy
}

// Masked returns a copy with secrets hidden, for display.
func (c *Config) Masked() Config {
	out := *c
	out.OpenAI.APIKey = maskIfSet(c.OpenAI.APIKey)
	out.Transcription.APIKey = maskIfSet(c.Transcription.APIKey)
	out.Storage.AccessKey = maskIfSet(c.Storage.AccessKey)
	out.Storage.SecretKey = maskIfSet(c.Storage.SecretKey)
	return out
}

func maskIfSet(s string) string {
	if s == "" {
		return ""
	}
	return util.MaskSecret(s, 4)
}

// Load reads the configuration file (or none) plus .env and the environment.
func Load(configFile string) (*Config, error) {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg := &Config{}
	if err := config.LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
