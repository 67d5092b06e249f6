package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/subtitler/httpclient"
	"github.com/kbukum/subtitler/llm"
)

func TestRegistered(t *testing.T) {
	d, err := llm.GetDialect(Name)
	if err != nil {
		t.Fatalf("expected openai dialect to be registered: %v", err)
	}
	if d.ChatPath() != "/chat/completions" {
		t.Errorf("unexpected chat path %q", d.ChatPath())
	}
}

func TestBuildRequest(t *testing.T) {
	body, err := Dialect{}.BuildRequest(llm.CompletionRequest{
		Model:        "gpt-4-1106-preview",
		SystemPrompt: "translator",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "srt"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := json.Marshal(body)
	var got map[string]any
	_ = json.Unmarshal(raw, &got)

	if _, ok := got["temperature"]; ok {
		t.Error("expected zero temperature to be omitted")
	}
	msgs := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
	first := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "translator" {
		t.Errorf("unexpected first message %v", first)
	}

	if _, err := (Dialect{}).BuildRequest(llm.CompletionRequest{}); err == nil {
		t.Error("expected error without a model")
	}
}

func TestParseResponse(t *testing.T) {
	body := []byte(`{"model":"gpt-4","choices":[{"message":{"role":"assistant","content":"1\n00:00:01,000 --> 00:00:02,000\nBonjour"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	resp, err := Dialect{}.ParseResponse(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "1\n00:00:01,000 --> 00:00:02,000\nBonjour" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.FinishReason != "stop" || resp.Usage.TotalTokens != 15 {
		t.Errorf("unexpected metadata %+v", resp)
	}

	if _, err := (Dialect{}).ParseResponse([]byte(`{"choices":[]}`)); !errors.Is(err, ErrNoChoices) {
		t.Errorf("expected ErrNoChoices, got %v", err)
	}
}

func TestAdapterRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"model":"gpt-4","choices":[{"message":{"role":"assistant","content":"hola"}}]}`))
	}))
	defer srv.Close()

	a, err := llm.New(llm.Config{
		Dialect: Name,
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4",
		Auth:    httpclient.BearerAuth("sk"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := llm.Complete(context.Background(), a, "sys", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hola" {
		t.Errorf("expected hola, got %q", text)
	}
}
