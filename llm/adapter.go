package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbukum/subtitler/httpclient"
	"github.com/kbukum/subtitler/httpclient/rest"
	"github.com/kbukum/subtitler/provider"
)

var ErrNoDialect = errors.New("llm: dialect is required")

var _ provider.RequestResponse[CompletionRequest, CompletionResponse] = (*Adapter)(nil)

// Adapter sends chat completions through one Dialect. Transport concerns
// (auth, timeouts, retry) sit in the rest client underneath.
type Adapter struct {
	rest    *rest.Client
	dialect Dialect
	// defaults fills Model, Temperature and MaxTokens on requests that
	// leave them zero.
	defaults CompletionRequest
}

// New resolves cfg.Dialect in the dialect registry.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()
	d, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return build(d, cfg)
}

// NewWithDialect builds an adapter for d without consulting the dialect
// registry.
func NewWithDialect(d Dialect, cfg Config) (*Adapter, error) {
	if d == nil {
		return nil, ErrNoDialect
	}
	if cfg.Name == "" {
		cfg.Name = d.Name() + "-llm"
	}
	cfg.ApplyDefaults()
	return build(d, cfg)
}

func build(d Dialect, cfg Config) (*Adapter, error) {
	client, err := rest.New(httpclient.Config{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
		Auth:    cfg.Auth,
		Retry:   cfg.Retry,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create rest client: %w", err)
	}
	return &Adapter{
		rest:    client,
		dialect: d,
		defaults: CompletionRequest{
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}, nil
}

func (a *Adapter) Name() string     { return a.rest.Name() }
func (a *Adapter) Dialect() Dialect { return a.dialect }
func (a *Adapter) Close()           { a.rest.Close() }

// Model is the default model.
func (a *Adapter) Model() string { return a.defaults.Model }

// IsAvailable probes the dialect health path. Dialects without one only
// need a configured base URL.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	hp := a.dialect.HealthPath()
	if hp == "" {
		return a.rest.IsAvailable(ctx)
	}
	_, err := rest.Get[json.RawMessage](ctx, a.rest, hp)
	return err == nil
}

// Execute sends one completion. Transport errors keep their
// *httpclient.Error classification under the wrap.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	req = a.withDefaults(req)

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: build request: %w", err)
	}
	resp, err := rest.Post[json.RawMessage](ctx, a.rest, a.dialect.ChatPath(), body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: execute: %w", err)
	}
	out, err := a.dialect.ParseResponse(resp.Data)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: parse response: %w", err)
	}
	return *out, nil
}

func (a *Adapter) withDefaults(req CompletionRequest) CompletionRequest {
	if req.Model == "" {
		req.Model = a.defaults.Model
	}
	if req.Temperature == 0 {
		req.Temperature = a.defaults.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.defaults.MaxTokens
	}
	return req
}
