// Package whisper implements transcription.Provider over the OpenAI
// /audio/transcriptions API.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/kbukum/subtitler/httpclient"
	"github.com/kbukum/subtitler/resilience"
	"github.com/kbukum/subtitler/transcription"
)

const (
	ProviderName = "whisper"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
	defaultTimeout = 300 * time.Second
	endpointPath   = "/audio/transcriptions"
)

// Config configures the provider.
type Config struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url" toml:"base_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key" toml:"api_key"`
	Model   string `yaml:"model" mapstructure:"model" toml:"model"`
	// ResponseFormat defaults to srt.
	ResponseFormat string `yaml:"response_format" mapstructure:"response_format" toml:"response_format"`
	Language       string `yaml:"language" mapstructure:"language" toml:"language"`
	// Timeout bounds the whole upload and transcription. Default 300s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" toml:"timeout"`

	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-" toml:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.ResponseFormat == "" {
		c.ResponseFormat = transcription.FormatSRT
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

func (c *Config) Validate() error {
	if !slices.Contains(transcription.ValidFormats, c.ResponseFormat) {
		return fmt.Errorf("whisper: response_format must be one of %v, got %q", transcription.ValidFormats, c.ResponseFormat)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("whisper: timeout must not be negative")
	}
	return nil
}

// Provider implements transcription.Provider.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ transcription.Provider = (*Provider)(nil)

// New validates cfg and returns a provider that authenticates with the
// configured API key.
func New(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Retry:   cfg.Retry,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: create client: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a key is configured. It does not call the API.
func (p *Provider) IsAvailable(context.Context) bool { return p.cfg.APIKey != "" }

// Transcribe uploads the audio file. The file is read into memory so the
// request body can be re-sent on retry.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	audio, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: read audio file: %w", err)
	}

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	format := p.cfg.ResponseFormat
	if req.Format != "" {
		format = req.Format
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	fields := map[string]string{
		"model":           model,
		"response_format": format,
	}
	if lang != "" {
		fields["language"] = lang
	}

	name := filepath.Base(req.AudioPath)
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   endpointPath,
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "file",
				FileName:    name,
				ContentType: mime.TypeByExtension(filepath.Ext(name)),
				Data:        audio,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: transcribe: %w", err)
	}

	if transcription.IsTextFormat(format) {
		return &transcription.TranscriptionResponse{Text: string(resp.Body), Format: format, Language: lang}, nil
	}
	return decodeJSON(resp.Body, format)
}

type jsonResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func decodeJSON(body []byte, format string) (*transcription.TranscriptionResponse, error) {
	var r jsonResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("whisper: decode %s response: %w", format, err)
	}
	out := &transcription.TranscriptionResponse{
		Text:     r.Text,
		Format:   format,
		Duration: r.Duration,
		Language: r.Language,
	}
	for _, s := range r.Segments {
		out.Segments = append(out.Segments, transcription.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return out, nil
}

// Close drops idle connections.
func (p *Provider) Close() { p.client.Close() }
