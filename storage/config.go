package storage

import (
	"errors"
	"fmt"
	"time"
)

// Provider names for the supported backends.
const (
	ProviderLocal = "local"
	ProviderMinio = "minio"
)

// Default configuration values.
const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "./data/results"
	DefaultBucket   = "subtitles"
	DefaultRegion   = "us-east-1"
)

// Config selects and configures the result store backend.
type Config struct {
	// Provider selects the backend: "local" or "minio".
	Provider string `yaml:"provider" mapstructure:"provider" toml:"provider"`

	// BasePath is the root directory for the local backend.
	BasePath string `yaml:"base_path" mapstructure:"base_path" toml:"base_path"`

	// Endpoint is the host:port of the S3-compatible server.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" toml:"endpoint"`
	Bucket   string `yaml:"bucket" mapstructure:"bucket" toml:"bucket"`
	Region   string `yaml:"region" mapstructure:"region" toml:"region"`

	AccessKey string `yaml:"access_key" mapstructure:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key" toml:"secret_key"`

	// UseSSL switches the minio client to https.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl" toml:"use_ssl"`

	// PresignExpiry makes downloads redirect to presigned minio links.
	// Zero streams results through the server.
	PresignExpiry time.Duration `yaml:"presign_expiry" mapstructure:"presign_expiry" toml:"presign_expiry"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate checks that the configuration is usable by the selected provider.
func (c *Config) Validate() error {
	if c.PresignExpiry < 0 {
		return errors.New("storage: presign_expiry must not be negative")
	}
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local provider")
		}
	case ProviderMinio:
		var errs []error
		if c.Endpoint == "" {
			errs = append(errs, errors.New("endpoint is required"))
		}
		if c.Bucket == "" {
			errs = append(errs, errors.New("bucket is required"))
		}
		if (c.AccessKey == "") != (c.SecretKey == "") {
			errs = append(errs, errors.New("access_key and secret_key must be set together"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid minio config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
