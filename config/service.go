package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/subtitler/logger"
)

var validEnvironments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields every process needs. Application configs
// embed it with `mapstructure:",squash"`.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" toml:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment" toml:"environment"`
	Version     string        `yaml:"version" mapstructure:"version" toml:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug" toml:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging" toml:"logging"`
}

// GetServiceConfig returns the receiver. It is promoted through embedding so
// application configs satisfy bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills empty fields. Embedding configs call it first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "subtitler"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the base fields. Embedding configs call it first.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(validEnvironments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvironments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}
