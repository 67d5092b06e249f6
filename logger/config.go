package logger

import (
	"cmp"
	"fmt"
	"slices"
)

// Config is the logging section of the service config.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level" toml:"level"`
	Format    string `yaml:"format" mapstructure:"format" toml:"format"`
	Output    string `yaml:"output" mapstructure:"output" toml:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color" toml:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp" toml:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller" toml:"caller"`
	// ServiceName tags console lines with a short service prefix.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" toml:"service_name"`
}

var (
	levels  = []string{"trace", "debug", "info", "warn", "error", "fatal"}
	formats = []string{FormatJSON, FormatConsole, FormatPretty}
	outputs = []string{"stdout", "stderr"}
)

// ApplyDefaults fills blanks with info-level console output on stdout.
// Timestamps are always on.
func (c *Config) ApplyDefaults() {
	c.Level = cmp.Or(c.Level, "info")
	c.Format = cmp.Or(c.Format, FormatConsole)
	c.Output = cmp.Or(c.Output, "stdout")
	c.Timestamp = true
}

func (c *Config) Validate() error {
	for _, f := range []struct {
		key, value string
		allowed    []string
	}{
		{"level", c.Level, levels},
		{"format", c.Format, formats},
		{"output", c.Output, outputs},
	} {
		if !slices.Contains(f.allowed, f.value) {
			return fmt.Errorf("logging.%s must be one of %v (got: %s)", f.key, f.allowed, f.value)
		}
	}
	return nil
}

