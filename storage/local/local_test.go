package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(&Config{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestUploadDownload(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	srt := "1\n00:00:01,000 --> 00:00:02,000\nHola\n\n"
	if err := s.Upload(ctx, "abc/translated_subtitles.srt", strings.NewReader(srt)); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	rc, err := s.Download(ctx, "abc/translated_subtitles.srt")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != srt {
		t.Errorf("expected %q, got %q", srt, got)
	}

	ok, err := s.Exists(ctx, "abc/translated_subtitles.srt")
	if err != nil || !ok {
		t.Errorf("expected object to exist, got %v, %v", ok, err)
	}
}

func TestUploadOverwrites(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_ = s.Upload(ctx, "a.srt", strings.NewReader("first"))
	if err := s.Upload(ctx, "a.srt", strings.NewReader("second")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	data, err := storage.GetBytes(ctx, s, "a.srt")
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected second, got %q", data)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestUploadFailureLeavesNoPartialFile(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Upload(ctx, "x/out.srt", failingReader{}); err == nil {
		t.Fatal("expected upload error")
	}
	if ok, _ := s.Exists(ctx, "x/out.srt"); ok {
		t.Error("expected no object after a failed write")
	}
	entries, _ := os.ReadDir(filepath.Join(s.BasePath(), "x"))
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestDownloadMissing(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Download(context.Background(), "nope.srt")
	if !storage.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPathsCannotEscapeBase(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Upload(ctx, "../../escape.srt", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.BasePath(), "escape.srt")); err != nil {
		t.Errorf("expected object rooted under base path: %v", err)
	}
	if _, err := s.resolve(".."); err == nil {
		t.Error("expected error for a path that resolves to the root")
	}
}

func TestDeleteAndList(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_ = storage.PutBytes(ctx, s, "one/translated_subtitles.srt", []byte("1"))
	_ = storage.PutBytes(ctx, s, "two/translated_subtitles.srt", []byte("22"))

	files, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files without lock files, got %+v", files)
	}
	if files[1].Path != "two/translated_subtitles.srt" || files[1].Size != 2 {
		t.Errorf("unexpected entry %+v", files[1])
	}

	if err := s.Delete(ctx, "one/translated_subtitles.srt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "one/translated_subtitles.srt"); err != nil {
		t.Errorf("expected deleting a missing object to succeed, got %v", err)
	}
	files, _ = s.List(ctx, "one/")
	if len(files) != 0 {
		t.Errorf("expected no files under one/, got %+v", files)
	}
}

func TestUploadWaitsForLock(t *testing.T) {
	s := newTestStorage(t)
	full, _ := s.resolve("busy.srt")
	_ = os.MkdirAll(filepath.Dir(full), 0o750)

	held := flock.New(full + lockSuffix)
	if err := held.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var uploadErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		uploadErr = s.Upload(ctx, "busy.srt", bytes.NewReader([]byte("x")))
	}()
	cancel()
	wg.Wait()
	_ = held.Unlock()

	if uploadErr == nil {
		t.Error("expected upload to fail while another writer holds the lock")
	}
}

func TestFactoryRegistration(t *testing.T) {
	s, err := storage.New(context.Background(), storage.Config{Provider: storage.ProviderLocal, BasePath: t.TempDir()}, logger.NewNop())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if _, ok := s.(*Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", s)
	}
}
