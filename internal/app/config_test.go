package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/subtitler/transcription/whisper"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{OpenAI: OpenAIConfig{APIKey: "sk-secret-key"}}
	cfg.ApplyDefaults()

	if cfg.Name != ServiceName {
		t.Errorf("expected name %q, got %q", ServiceName, cfg.Name)
	}
	if cfg.Transcription.APIKey != "sk-secret-key" {
		t.Errorf("expected transcription to inherit the openai key, got %q", cfg.Transcription.APIKey)
	}
	if cfg.Transcription.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected openai base url, got %q", cfg.Transcription.BaseURL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.QueueWait != 30*time.Second {
		t.Errorf("expected queue wait 30s, got %v", cfg.Pipeline.QueueWait)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestConfigTranscriptionOverride(t *testing.T) {
	cfg := &Config{
		OpenAI:        OpenAIConfig{APIKey: "sk-shared"},
		Transcription: whisper.Config{APIKey: "sk-own", BaseURL: "http://localhost:9000/v1"},
	}
	cfg.ApplyDefaults()
	if cfg.Transcription.APIKey != "sk-own" {
		t.Errorf("expected own key kept, got %q", cfg.Transcription.APIKey)
	}
	if cfg.Transcription.BaseURL != "http://localhost:9000/v1" {
		t.Errorf("expected own base url kept, got %q", cfg.Transcription.BaseURL)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		section string
	}{
		{"environment", func(c *Config) { c.Environment = "moon" }, "service"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server"},
		{"response format", func(c *Config) { c.Transcription.ResponseFormat = "xml" }, "transcription"},
		{"temperature", func(c *Config) { c.Translation.Temperature = 3 }, "translation"},
		{"storage provider", func(c *Config) { c.Storage.Provider = "ftp" }, "storage"},
		{"sample rate", func(c *Config) {
			c.Observability.Enabled = true
			c.Observability.SampleRate = 2
		}, "observability"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), tc.section+":") {
				t.Errorf("expected error in section %q, got %v", tc.section, err)
			}
		})
	}
}

func TestConfigValidateTags(t *testing.T) {
	cfg := &Config{OpenAI: OpenAIConfig{BaseURL: "not a url"}}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected an invalid openai base url to fail")
	}
}

func TestRetryPolicy(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.RetryPolicy() != nil {
		t.Error("expected no retry policy when disabled")
	}

	cfg.Retry.Enabled = true
	cfg.Retry.MaxAttempts = 4
	policy := cfg.RetryPolicy()
	if policy == nil {
		t.Fatal("expected a retry policy")
	}
	if policy.MaxAttempts != 4 {
		t.Errorf("expected 4 attempts, got %d", policy.MaxAttempts)
	}
	policy.MaxAttempts = 9
	if cfg.Retry.MaxAttempts != 4 {
		t.Error("expected RetryPolicy to return a copy")
	}
}

func TestMasked(t *testing.T) {
	cfg := &Config{OpenAI: OpenAIConfig{APIKey: "sk-1234567890"}}
	cfg.Storage.SecretKey = "minio-secret"
	cfg.ApplyDefaults()

	masked := cfg.Masked()
	if masked.OpenAI.APIKey != "sk-1***" {
		t.Errorf("expected masked key, got %q", masked.OpenAI.APIKey)
	}
	if masked.Transcription.APIKey != "sk-1***" {
		t.Errorf("expected masked transcription key, got %q", masked.Transcription.APIKey)
	}
	if masked.Storage.SecretKey != "mini***" {
		t.Errorf("expected masked secret, got %q", masked.Storage.SecretKey)
	}
	if masked.Storage.AccessKey != "" {
		t.Errorf("expected empty access key to stay empty, got %q", masked.Storage.AccessKey)
	}
	if cfg.OpenAI.APIKey != "sk-1234567890" {
		t.Error("expected the original config untouched")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtitler.yaml")
	content := "server:\n  port: 9191\ntranslation:\n  model: gpt-4o\npipeline:\n  max_concurrent: 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("expected port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Translation.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", cfg.Translation.Model)
	}
	if cfg.Pipeline.MaxConcurrent != 2 {
		t.Errorf("expected max_concurrent 2, got %d", cfg.Pipeline.MaxConcurrent)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	cfg.ApplyDefaults()
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}
