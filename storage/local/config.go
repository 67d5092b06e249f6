package local

import (
	"fmt"
	"time"
)

// DefaultLockRetry is how often a blocked writer polls the object lock.
const DefaultLockRetry = 20 * time.Millisecond

// Config holds local filesystem storage settings.
type Config struct {
	// BasePath is the root directory; it is created if missing.
	BasePath string
	// LockRetry is the poll interval while waiting on another writer.
	LockRetry time.Duration
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LockRetry <= 0 {
		c.LockRetry = DefaultLockRetry
	}
}

// Validate checks that the local configuration is valid.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("local: base_path is required")
	}
	return nil
}
