package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid-level", Format: "json", Output: "stdout"}
	if l := New(cfg, "test"); l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "subtitler", &buf)

	l.WithComponent("pipeline").Info("step finished", Fields("step", "extract", "blocks", 3))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "step finished" {
		t.Errorf("expected message 'step finished', got %v", entry["message"])
	}
	if entry[FieldComponent] != "pipeline" {
		t.Errorf("expected component 'pipeline', got %v", entry[FieldComponent])
	}
	if entry["step"] != "extract" {
		t.Errorf("expected step 'extract', got %v", entry["step"])
	}
	if entry["service"] != "subtitler" {
		t.Errorf("expected service 'subtitler', got %v", entry["service"])
	}
}

func TestConsoleOutputWithoutTerminalHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console"}, "subtitler", &buf)
	l.Warn("careful")

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Errorf("expected no ANSI escapes for a non-terminal writer, got %q", out)
	}
	if !strings.Contains(out, "[SUB][WRN]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "svc", &buf)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	l.WithContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), `"request_id":"req-123"`) {
		t.Errorf("expected request id in output, got %q", buf.String())
	}
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("expected 'req-123', got %q", got)
	}
}

func TestWithContextWithoutRequestIDReturnsSameLogger(t *testing.T) {
	l := NewNop()
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected the receiver when no request id is present")
	}
}

func TestWithErrorAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "svc", &buf)
	l.WithError(errors.New("boom")).WithFields(map[string]interface{}{"k": "v"}).Error("failed")

	out := buf.String()
	if !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("expected error field, got %q", out)
	}
	if !strings.Contains(out, `"k":"v"`) {
		t.Errorf("expected custom field, got %q", out)
	}
}

func TestInitSetsGlobal(t *testing.T) {
	Init(&Config{Level: "info", Format: "json", Output: "stdout", ServiceName: "subtitler"})
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if gl.service != "subtitler" {
		t.Errorf("expected service 'subtitler', got %q", gl.service)
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewNop()
	SetGlobalLogger(l)
	if got := GetGlobalLogger(); got != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
	// These should not panic.
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b", "two", "dangling")
	if len(f) != 2 {
		t.Errorf("expected 2 fields, got %d", len(f))
	}

	ef := ErrorFields("save", errors.New("disk full"))
	if ef[FieldOperation] != "save" || ef[FieldError] != "disk full" {
		t.Errorf("unexpected error fields: %v", ef)
	}

	df := DurationFields("extract", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}

	merged := MergeWithError(nil, errors.New("x"))
	if merged[FieldError] != "x" {
		t.Errorf("expected merged error, got %v", merged)
	}
}

func TestRunFieldsAndNilError(t *testing.T) {
	f := RunFields("r1", "clip.mp4", "German")
	if f[FieldRunID] != "r1" || f[FieldFilename] != "clip.mp4" || f[FieldLanguage] != "German" {
		t.Errorf("unexpected run fields: %v", f)
	}
	if _, ok := MergeWithError(f, nil)[FieldError]; ok {
		t.Error("expected no error field for a nil error")
	}
}
