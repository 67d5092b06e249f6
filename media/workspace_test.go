package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/subtitler/errors"
)

func TestSaveUpload_KeepsBytesAndExtension(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ws.Cleanup()

	data := []byte("\x00\x00\x00\x18ftypmp42 video bytes")
	path, err := ws.SaveUpload(context.Background(), "Holiday Clip.MP4", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".mp4" {
		t.Errorf("expected .mp4 extension, got %q", filepath.Ext(path))
	}
	if filepath.Dir(path) != ws.Dir() {
		t.Errorf("expected file inside workspace, got %s", path)
	}
	got, _ := os.ReadFile(path)
	if !bytes.Equal(got, data) {
		t.Errorf("expected identical bytes, got %q", got)
	}
}

func TestSaveUpload_UniqueNames(t *testing.T) {
	ws, _ := NewWorkspace(t.TempDir())
	defer ws.Cleanup()

	a, _ := ws.SaveUpload(context.Background(), "same.mov", strings.NewReader("a"))
	b, _ := ws.SaveUpload(context.Background(), "same.mov", strings.NewReader("b"))
	if a == b {
		t.Errorf("expected distinct paths, both were %s", a)
	}
	if strings.Contains(filepath.Base(a), "same") {
		t.Errorf("expected the original name not to leak into the path, got %s", a)
	}
}

func TestSaveUpload_NoExtension(t *testing.T) {
	ws, _ := NewWorkspace(t.TempDir())
	defer ws.Cleanup()

	path, err := ws.SaveUpload(context.Background(), "README", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != "" {
		t.Errorf("expected no extension, got %q", filepath.Ext(path))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSaveUpload_ReadFailure(t *testing.T) {
	ws, _ := NewWorkspace(t.TempDir())
	defer ws.Cleanup()

	_, err := ws.SaveUpload(context.Background(), "a.mp4", failingReader{})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeUploadFailed {
		t.Fatalf("expected UPLOAD_FAILED, got %v", err)
	}
	entries, _ := os.ReadDir(ws.Dir())
	if len(entries) != 0 {
		t.Errorf("expected the partial file to be removed, found %d entries", len(entries))
	}
}

func TestSaveUpload_CanceledContext(t *testing.T) {
	ws, _ := NewWorkspace(t.TempDir())
	defer ws.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ws.SaveUpload(ctx, "a.mp4", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCleanup_RemovesEverythingAndIsIdempotent(t *testing.T) {
	ws, _ := NewWorkspace(filepath.Join(t.TempDir(), "nested", "tmp"))
	_, _ = ws.SaveUpload(context.Background(), "a.mp4", strings.NewReader("x"))

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Errorf("expected workspace removed, stat err = %v", err)
	}
	if err := ws.Cleanup(); err != nil {
		t.Errorf("expected second cleanup to succeed, got %v", err)
	}
}
