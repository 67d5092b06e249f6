package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/subtitler/httpclient"
)

type mockDialect struct {
	name       string
	healthPath string
	buildErr   error
}

func (d *mockDialect) Name() string {
	if d.name != "" {
		return d.name
	}
	return "mock"
}

func (d *mockDialect) ChatPath() string   { return "/chat" }
func (d *mockDialect) HealthPath() string { return d.healthPath }

func (d *mockDialect) BuildRequest(req CompletionRequest) (any, error) {
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	return map[string]any{
		"model":       req.Model,
		"system":      req.SystemPrompt,
		"messages":    req.Messages,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	}, nil
}

func (d *mockDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	var raw struct {
		Content string `json:"content"`
		Model   string `json:"model"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &CompletionResponse{Content: raw.Content, Model: raw.Model}, nil
}

func withCleanRegistry(t *testing.T) {
	t.Helper()
	original := registered
	registered = &dialectSet{byName: map[string]Dialect{}}
	t.Cleanup(func() { registered = original })
}

func TestNew_FromRegistry(t *testing.T) {
	withCleanRegistry(t)
	RegisterDialect("mock", &mockDialect{})

	a, err := New(Config{Dialect: "mock", BaseURL: "http://localhost:1", Model: "m1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name() != "mock-llm" {
		t.Errorf("expected mock-llm, got %q", a.Name())
	}
	if a.Dialect().Name() != "mock" || a.Model() != "m1" {
		t.Errorf("unexpected adapter %q/%q", a.Dialect().Name(), a.Model())
	}
	a.Close()
}

func TestNew_UnknownDialect(t *testing.T) {
	withCleanRegistry(t)
	if _, err := New(Config{Dialect: "nope"}); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestNewWithDialect(t *testing.T) {
	if _, err := NewWithDialect(nil, Config{}); !errors.Is(err, ErrNoDialect) {
		t.Errorf("expected ErrNoDialect, got %v", err)
	}
	a, err := NewWithDialect(&mockDialect{name: "custom"}, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name() != "custom-llm" {
		t.Errorf("expected custom-llm, got %q", a.Name())
	}
}

func TestExecute_AppliesDefaultsAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat" {
			t.Errorf("expected /v1/chat, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-1" {
			t.Errorf("expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "default-model" {
			t.Errorf("expected default model, got %v", body["model"])
		}
		if body["temperature"] != 0.2 {
			t.Errorf("expected temperature 0.2, got %v", body["temperature"])
		}
		if body["max_tokens"] != float64(256) {
			t.Errorf("expected max_tokens 256, got %v", body["max_tokens"])
		}
		_, _ = w.Write([]byte(`{"content":"bonjour","model":"default-model"}`))
	}))
	defer srv.Close()

	a, err := NewWithDialect(&mockDialect{}, Config{
		BaseURL:     srv.URL + "/v1",
		Model:       "default-model",
		Temperature: 0.2,
		MaxTokens:   256,
		Auth:        httpclient.BearerAuth("sk-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := a.Execute(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "bonjour" {
		t.Errorf("expected bonjour, got %q", resp.Content)
	}
}

func TestExecute_RequestOverridesDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"content":"ok","model":"` + body["model"].(string) + `"}`))
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL, Model: "default"})
	resp, err := a.Execute(context.Background(), CompletionRequest{Model: "override"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "override" {
		t.Errorf("expected override, got %q", resp.Model)
	}
}

func TestExecute_BuildError(t *testing.T) {
	a, _ := NewWithDialect(&mockDialect{buildErr: errors.New("bad input")}, Config{BaseURL: "http://localhost:1"})
	_, err := a.Execute(context.Background(), CompletionRequest{})
	if err == nil || !strings.Contains(err.Error(), "build request") {
		t.Errorf("expected build request error, got %v", err)
	}
}

func TestExecute_KeepsHTTPClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL})
	_, err := a.Execute(context.Background(), CompletionRequest{})
	if !httpclient.IsAuth(err) {
		t.Errorf("expected auth error through the wrap, got %v", err)
	}
}

func TestExecute_ParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2]`))
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL})
	_, err := a.Execute(context.Background(), CompletionRequest{})
	if err == nil || !strings.Contains(err.Error(), "parse response") {
		t.Errorf("expected parse response error, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	healthy, _ := NewWithDialect(&mockDialect{healthPath: "/models"}, Config{BaseURL: srv.URL})
	if !healthy.IsAvailable(context.Background()) {
		t.Error("expected adapter with reachable health path to be available")
	}
	broken, _ := NewWithDialect(&mockDialect{healthPath: "/missing"}, Config{BaseURL: srv.URL})
	if broken.IsAvailable(context.Background()) {
		t.Error("expected 404 health path to be unavailable")
	}
	noPath, _ := NewWithDialect(&mockDialect{}, Config{})
	if noPath.IsAvailable(context.Background()) {
		t.Error("expected adapter without base URL to be unavailable")
	}
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			System   string    `json:"system"`
			Messages []Message `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.System != "be brief" {
			t.Errorf("expected system prompt, got %q", body.System)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != RoleUser || body.Messages[0].Content != "hi" {
			t.Errorf("unexpected messages %+v", body.Messages)
		}
		_, _ = w.Write([]byte(`{"content":"hey"}`))
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL})
	text, err := Complete(context.Background(), a, "be brief", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hey" {
		t.Errorf("expected hey, got %q", text)
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Dialect: "openai"}
	cfg.ApplyDefaults()
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected %v, got %v", defaultTimeout, cfg.Timeout)
	}
	if cfg.Name != "openai-llm" {
		t.Errorf("expected openai-llm, got %q", cfg.Name)
	}

	kept := Config{Name: "translator", Timeout: 5}
	kept.ApplyDefaults()
	if kept.Name != "translator" || kept.Timeout != 5 {
		t.Errorf("expected explicit values kept, got %+v", kept)
	}
}
