package minio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/subtitler/storage"
)

// fakeS3 answers the handful of calls these tests make and records them.
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	objects  map[string]bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodPut && strings.Count(strings.Trim(r.URL.Path, "/"), "/") == 0:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		if !f.objects[r.URL.Path] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", `"abc"`)
		w.Header().Set("Content-Length", "3")
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestStorage(t *testing.T, fake *fakeS3) *Storage {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewStorage(storage.Config{
		Provider:  storage.ProviderMinio,
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    "subtitles",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestEnsureBucket(t *testing.T) {
	fake := &fakeS3{}
	s := newTestStorage(t, fake)

	if err := s.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}
	if len(fake.requests) == 0 || (fake.requests[0] != "PUT /subtitles/" && fake.requests[0] != "PUT /subtitles") {
		t.Errorf("expected bucket PUT, got %v", fake.requests)
	}
}

func TestExists(t *testing.T) {
	fake := &fakeS3{objects: map[string]bool{"/subtitles/abc/translated_subtitles.srt": true}}
	s := newTestStorage(t, fake)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "abc/translated_subtitles.srt")
	if err != nil || !ok {
		t.Errorf("expected existing object, got %v, %v", ok, err)
	}
	ok, err = s.Exists(ctx, "missing/translated_subtitles.srt")
	if err != nil || ok {
		t.Errorf("expected missing object without error, got %v, %v", ok, err)
	}
}

func TestSignedURL(t *testing.T) {
	s := newTestStorage(t, &fakeS3{})
	ctx := context.Background()

	signed, err := s.SignedURL(ctx, "translations/abc.srt", "", 15*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.Contains(signed, "/subtitles/translations/abc.srt?") {
		t.Errorf("expected bucket and key in path, got %q", signed)
	}
	if !strings.Contains(signed, "X-Amz-Signature=") || !strings.Contains(signed, "X-Amz-Expires=900") {
		t.Errorf("expected presigned query, got %q", signed)
	}
	if strings.Contains(signed, "response-content-disposition") {
		t.Errorf("expected no header overrides without a filename, got %q", signed)
	}

	named, err := s.SignedURL(ctx, "translations/abc.srt", "translated_subtitles.srt", time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	u, err := url.Parse(named)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := `attachment; filename="translated_subtitles.srt"`
	if got := u.Query().Get("response-content-disposition"); got != want {
		t.Errorf("expected disposition %q, got %q", want, got)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := storage.Config{Provider: storage.ProviderMinio, AccessKey: "only-access"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing endpoint and half-set credentials")
	}
}
