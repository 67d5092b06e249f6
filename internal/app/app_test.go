package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/subtitler/bootstrap"
	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/pipeline"
	"github.com/kbukum/subtitler/sse"
)

func newTestApp(t *testing.T) *bootstrap.App[*Config] {
	t.Helper()
	dir := t.TempDir()
	cfg := &Config{}
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Media.FFmpegBinary = filepath.Join(dir, "no-such-ffmpeg")
	cfg.Media.TempDir = dir
	cfg.Storage.BasePath = filepath.Join(dir, "results")
	cfg.History.Path = filepath.Join(dir, "history.db")

	a, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(logger.NewNop()), bootstrap.WithSummaryWriter(io.Discard))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	a.Cfg.Server.Host = "127.0.0.1"
	a.Cfg.Server.Port = 0
	return a
}

func componentNames(r *component.Registry) []string {
	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	return names
}

func TestWireBuildsPipeline(t *testing.T) {
	a := newTestApp(t)
	stack, err := Wire(a)
	if err != nil {
		t.Fatalf("Wire failed: %v", err)
	}

	got := strings.Join(componentNames(a.Components), ",")
	if got != "telemetry,ffmpeg,storage,history" {
		t.Errorf("expected telemetry,ffmpeg,storage,history, got %s", got)
	}

	err = a.RunTask(context.Background(), func(ctx context.Context) error {
		if stack.Pipeline() == nil {
			t.Error("expected pipeline after configure")
		}
		if stack.Storage.Storage() == nil {
			t.Error("expected storage started")
		}
		if stack.History.Store() == nil {
			t.Error("expected history open")
		}
		if stack.Server() != nil {
			t.Error("expected no server without Serve")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if stack.History.Store() != nil {
		t.Error("expected history closed after stop")
	}
}

func TestMissingFFmpegDoesNotBlockStartup(t *testing.T) {
	a := newTestApp(t)
	if _, err := Wire(a); err != nil {
		t.Fatalf("Wire failed: %v", err)
	}
	err := a.RunTask(context.Background(), func(ctx context.Context) error {
		ffmpeg := a.Components.Get("ffmpeg")
		if ffmpeg == nil {
			t.Fatal("expected ffmpeg component")
		}
		if h := ffmpeg.Health(ctx); h.Status != component.StatusUnhealthy {
			t.Errorf("expected ffmpeg unhealthy, got %s", h.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected startup to succeed without ffmpeg, got %v", err)
	}
}

func TestServeRegistersRoutes(t *testing.T) {
	a := newTestApp(t)
	stack, err := Wire(a)
	if err != nil {
		t.Fatalf("Wire failed: %v", err)
	}
	Serve(a, stack)

	err = a.RunTask(context.Background(), func(ctx context.Context) error {
		srv := stack.Server()
		if srv == nil {
			t.Fatal("expected server after configure")
		}
		if !srv.Listening() {
			t.Fatal("expected server listening")
		}
		if a.Components.Get("events") == nil {
			t.Error("expected the event stream registered")
		}
		base := fmt.Sprintf("http://%s", srv.Addr())

		tests := []struct {
			path   string
			status int
			body   string
		}{
			{"/info", http.StatusOK, `"version"`},
			{"/api/v1/translations", http.StatusOK, `"meta"`},
			{"/", http.StatusOK, "Transcribe and Translate"},
			{"/health", http.StatusServiceUnavailable, "ffmpeg"},
		}
		for _, tc := range tests {
			resp, err := http.Get(base + tc.path)
			if err != nil {
				t.Errorf("GET %s: %v", tc.path, err)
				continue
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Errorf("GET %s: expected %d, got %d", tc.path, tc.status, resp.StatusCode)
			}
			if !strings.Contains(string(body), tc.body) {
				t.Errorf("GET %s: expected body to contain %q, got %s", tc.path, tc.body, body)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if stack.Server().Listening() {
		t.Error("expected server stopped after the task")
	}
}

type recordingPublisher struct {
	topic, name string
	data        []byte
}

func (p *recordingPublisher) Publish(topic, name string, data []byte) bool {
	p.topic, p.name, p.data = topic, name, data
	return true
}

func TestPublishTransitions(t *testing.T) {
	p := &recordingPublisher{}
	observe := publishTransitions(p, logger.NewNop())
	observe(pipeline.Transition{
		RunID:    "abc",
		Filename: "movie.mp4",
		Language: "French",
		From:     pipeline.StateIdle,
		To:       pipeline.StateFileSaved,
		At:       time.Unix(0, 0).UTC(),
	})

	if p.topic != "run:abc" {
		t.Errorf("expected topic run:abc, got %q", p.topic)
	}
	if p.name != sse.EventTransition {
		t.Errorf("expected event %q, got %q", sse.EventTransition, p.name)
	}
	body := string(p.data)
	for _, want := range []string{`"run_id":"abc"`, `"from":"idle"`, `"to":"file_saved"`, `"filename":"movie.mp4"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}
