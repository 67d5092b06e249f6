package media

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/subtitler/process"
)

// Config configures intake and extraction.
type Config struct {
	// FFmpegBinary is a path or a name resolved through PATH.
	FFmpegBinary string `yaml:"ffmpeg_binary" mapstructure:"ffmpeg_binary" toml:"ffmpeg_binary"`
	AudioExt     string `yaml:"audio_ext" mapstructure:"audio_ext" toml:"audio_ext"`
	// TempDir holds the per-run workspaces. Empty means os.TempDir().
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir" toml:"temp_dir"`
	// AllowedExtensions is checked by the web form, without the dot.
	AllowedExtensions []string      `yaml:"allowed_extensions" mapstructure:"allowed_extensions" toml:"allowed_extensions"`
	GracePeriod       time.Duration `yaml:"grace_period" mapstructure:"grace_period" toml:"grace_period"`
}

func (c *Config) ApplyDefaults() {
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = "ffmpeg"
	}
	if c.AudioExt == "" {
		c.AudioExt = "mp3"
	}
	c.AudioExt = strings.TrimPrefix(strings.ToLower(c.AudioExt), ".")
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{"mp4", "avi", "mov"}
	}
	for i, ext := range c.AllowedExtensions {
		c.AllowedExtensions[i] = strings.TrimPrefix(strings.ToLower(ext), ".")
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = process.DefaultGracePeriod
	}
}

func (c *Config) Validate() error {
	if c.FFmpegBinary == "" {
		return fmt.Errorf("media.ffmpeg_binary is required")
	}
	if c.AudioExt == "" || strings.ContainsAny(c.AudioExt, `/\`) {
		return fmt.Errorf("media.audio_ext is invalid: %q", c.AudioExt)
	}
	if c.GracePeriod < 0 {
		return fmt.Errorf("media.grace_period must not be negative")
	}
	return nil
}

// AcceptAttr renders the extensions for an <input accept> attribute, e.g.
// ".mp4,.avi,.mov".
func (c *Config) AcceptAttr() string {
	parts := make([]string, len(c.AllowedExtensions))
	for i, ext := range c.AllowedExtensions {
		parts[i] = "." + ext
	}
	return strings.Join(parts, ",")
}
