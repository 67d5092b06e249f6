package history

import (
	"fmt"
	"time"
)

const (
	DefaultPath        = "./data/history.db"
	DefaultBusyTimeout = 5 * time.Second
	DefaultListLimit   = 20
)

// Config holds history database settings.
type Config struct {
	// Path is the SQLite file. Its directory is created on open.
	Path        string        `yaml:"path" mapstructure:"path" toml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout" mapstructure:"busy_timeout" toml:"busy_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
}

func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("history: path is required")
	}
	return nil
}
