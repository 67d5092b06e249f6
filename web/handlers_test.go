package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/subtitler/errors"
	"github.com/kbukum/subtitler/history"
	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/pipeline"
	"github.com/kbukum/subtitler/storage"
	storagetest "github.com/kbukum/subtitler/storage/testutil"
	"github.com/kbukum/subtitler/subtitle"
)

const (
	testID  = "0b8f7c1e-4d2a-4f6b-9a53-2f1c8e7d6a10"
	testSRT = "1\n00:00:01,000 --> 00:00:02,000\nBonjour\n"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRunner struct {
	calls int
	got   pipeline.Input
	body  []byte
	err   error
}

func (f *fakeRunner) Run(_ context.Context, in pipeline.Input) (*pipeline.Result, error) {
	f.calls++
	f.got = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{
		ID:          testID,
		Filename:    in.Filename,
		Language:    in.Language,
		Translation: testSRT,
		Comparison:  subtitle.Comparison{SourceBlocks: 1, TranslatedBlocks: 1},
	}, nil
}

type fakeHistory struct {
	entries map[string]*history.Entry
	err     error
}

func (f *fakeHistory) Get(_ context.Context, id string) (*history.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	return e, nil
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]*history.Entry, error) {
	out := make([]*history.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, f.err
}

type fixture struct {
	engine  *gin.Engine
	runner  *fakeRunner
	results *storagetest.Component
	history *fakeHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine:  gin.New(),
		runner:  &fakeRunner{},
		results: storagetest.NewStarted(),
		history: &fakeHistory{entries: map[string]*history.Entry{
			testID: {ID: testID, Filename: "movie.mp4", Language: "French", Status: history.StatusTranslated, CreatedAt: time.Now()},
		}},
	}
	h, err := NewHandlers(Deps{
		Runner:            f.runner,
		Results:           f.results,
		History:           f.history,
		AllowedExtensions: []string{"mp4", "avi", "mov"},
		Logger:            logger.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandlers: %v", err)
	}
	Register(f.engine, h)
	return f
}

func multipartRequest(t *testing.T, target, filename, language string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write([]byte("video-bytes"))
	}
	if language != "" {
		_ = w.WriteField("language", language)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.engine.ServeHTTP(rr, req)
	return rr
}

func TestIndexRendersForm(t *testing.T) {
	f := newFixture(t)
	rr := f.do(httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{`accept=".mp4,.avi,.mov"`, `name="language"`, "Transcribe and Translate"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in form", want)
		}
	}
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture(t)
	rr := f.do(multipartRequest(t, "/", "Movie.MP4", "French"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if f.runner.got.Filename != "Movie.MP4" || f.runner.got.Language != "French" {
		t.Errorf("unexpected input %+v", f.runner.got)
	}
	if string(f.runner.body) != "video-bytes" {
		t.Errorf("expected upload bytes, got %q", f.runner.body)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<pre>1\n00:00:01,000 --&gt; 00:00:02,000\nBonjour\n</pre>") {
		t.Errorf("expected escaped translation in <pre>, got %s", body)
	}
	if !strings.Contains(body, `href="/download/`+testID+`"`) {
		t.Error("expected download link")
	}
}

func TestSubmitMissingInputShowsNoMessage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		language string
	}{
		{"no file", "", "French"},
		{"no language", "movie.mp4", ""},
		{"blank language", "movie.mp4", "   "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rr := f.do(multipartRequest(t, "/", tc.filename, tc.language))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			if strings.Contains(rr.Body.String(), "An error occurred") {
				t.Error("expected no error message")
			}
			if f.runner.calls != 0 {
				t.Errorf("expected no pipeline run, got %d", f.runner.calls)
			}
		})
	}
}

func TestSubmitFailureShowsGenericMessage(t *testing.T) {
	f := newFixture(t)
	f.runner.err = apperrors.ExtractionFailed("tool_failure", 1, nil).WithDiagnostics("moov atom not found")

	rr := f.do(multipartRequest(t, "/", "movie.mp4", "French"))
	body := rr.Body.String()

	if !strings.Contains(body, "An error occurred: The audio track could not be extracted from the video.") {
		t.Errorf("expected generic message, got %s", body)
	}
	if strings.Contains(body, "moov atom") {
		t.Error("diagnostics leaked into the page")
	}
}

func TestSubmitRejectsExtension(t *testing.T) {
	f := newFixture(t)
	rr := f.do(multipartRequest(t, "/", "notes.txt", "French"))

	if !strings.Contains(rr.Body.String(), "An error occurred: file: must have one of the extensions") {
		t.Errorf("expected extension message, got %s", rr.Body.String())
	}
	if f.runner.calls != 0 {
		t.Error("expected no pipeline run")
	}
}

func TestDownload(t *testing.T) {
	f := newFixture(t)
	if err := storage.PutBytes(context.Background(), f.results, pipeline.ResultPath(testID), []byte(testSRT)); err != nil {
		t.Fatalf("PutBytes: %v", err)
	}

	rr := f.do(httptest.NewRequest(http.MethodGet, "/download/"+testID, http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="translated_subtitles.srt"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	if got := rr.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("expected text/plain, got %q", got)
	}
	if rr.Body.String() != testSRT {
		t.Errorf("expected stored SRT, got %q", rr.Body.String())
	}
}

func TestDownloadUnknown(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"7a1d2c3b-0000-4000-8000-000000000000", "not-a-uuid"} {
		rr := f.do(httptest.NewRequest(http.MethodGet, "/download/"+id, http.NoBody))
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", id, rr.Code)
		}
	}
}

// signingStore adds presigned links to the in-memory store.
type signingStore struct {
	*storagetest.Component
}

func (s signingStore) SignedURL(_ context.Context, path, filename string, expiry time.Duration) (string, error) {
	return "https://objects.test/" + path + "?name=" + filename + "&ttl=" + expiry.String(), nil
}

func TestDownloadRedirectsToSignedURL(t *testing.T) {
	results := signingStore{storagetest.NewStarted()}
	if err := storage.PutBytes(context.Background(), results, pipeline.ResultPath(testID), []byte(testSRT)); err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	h, err := NewHandlers(Deps{
		Runner:        &fakeRunner{},
		Results:       results,
		History:       &fakeHistory{},
		PresignExpiry: 5 * time.Minute,
		Logger:        logger.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandlers: %v", err)
	}
	engine := gin.New()
	Register(engine, h)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/"+testID, http.NoBody))
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	want := "https://objects.test/" + pipeline.ResultPath(testID) + "?name=translated_subtitles.srt&ttl=5m0s"
	if got := rr.Header().Get("Location"); got != want {
		t.Errorf("expected Location %q, got %q", want, got)
	}

	rr = httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/7a1d2c3b-0000-4000-8000-000000000000", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown id, got %d", rr.Code)
	}
}

type errorBody struct {
	Error struct {
		Code      string         `json:"code"`
		Retryable bool           `json:"retryable"`
		Details   map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
}

func TestCreateTranslation(t *testing.T) {
	f := newFixture(t)
	rr := f.do(multipartRequest(t, "/api/v1/translations", "movie.mov", "pt-BR"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Data struct {
			ID          string              `json:"id"`
			Language    string              `json:"language"`
			Translation string              `json:"translation"`
			Comparison  subtitle.Comparison `json:"comparison"`
			DownloadURL string              `json:"download_url"`
		} `json:"data"`
	}
	decode(t, rr, &body)
	if body.Data.ID != testID || body.Data.Language != "pt-BR" || body.Data.Translation != testSRT {
		t.Errorf("unexpected data %+v", body.Data)
	}
	if body.Data.DownloadURL != "/download/"+testID {
		t.Errorf("unexpected download url %q", body.Data.DownloadURL)
	}
	if !body.Data.Comparison.Matches() {
		t.Error("expected matching comparison")
	}
}

func TestCreateTranslationErrors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		language   string
		runErr     error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"missing file", "", "French", nil, http.StatusBadRequest, "MISSING_FIELD", "file"},
		{"missing language", "movie.mp4", "", nil, http.StatusBadRequest, "MISSING_FIELD", "language"},
		{"language too long", "movie.mp4", strings.Repeat("x", 65), nil, http.StatusBadRequest, "INVALID_INPUT", ""},
		{"extraction", "movie.mp4", "French", apperrors.ExtractionFailed("tool_failure", 1, nil), http.StatusUnprocessableEntity, "EXTRACTION_FAILED", ""},
		{"translation", "movie.mp4", "French", apperrors.TranslationFailed(nil).WithRetryable(false), http.StatusBadGateway, "TRANSLATION_FAILED", ""},
		{"busy", "movie.mp4", "French", apperrors.ServiceUnavailable("translation pipeline"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.runner.err = tc.runErr
			rr := f.do(multipartRequest(t, "/api/v1/translations", tc.filename, tc.language))

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body.String())
			}
			var body errorBody
			decode(t, rr, &body)
			if body.Error.Code != tc.wantCode {
				t.Errorf("expected %s, got %s", tc.wantCode, body.Error.Code)
			}
			if tc.wantField != "" && body.Error.Details["field"] != tc.wantField {
				t.Errorf("expected field %s, got %v", tc.wantField, body.Error.Details["field"])
			}
		})
	}
}

func TestCreateTranslationNotMultipart(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/translations", strings.NewReader("language=French"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := f.do(req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetTranslation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/translations/"+testID, http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Data history.Entry `json:"data"`
	}
	decode(t, rr, &body)
	if body.Data.ID != testID || body.Data.Status != history.StatusTranslated {
		t.Errorf("unexpected entry %+v", body.Data)
	}

	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/translations/7a1d2c3b-0000-4000-8000-000000000000", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}

	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/translations/nope", http.NoBody))
	var eb errorBody
	decode(t, rr, &eb)
	if rr.Code != http.StatusBadRequest || eb.Error.Code != "INVALID_FORMAT" {
		t.Errorf("expected 400 INVALID_FORMAT, got %d %s", rr.Code, eb.Error.Code)
	}
}

func TestListTranslations(t *testing.T) {
	f := newFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/translations?limit=5", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Data []history.Entry `json:"data"`
		Meta struct {
			Total int `json:"total"`
			Limit int `json:"limit"`
		} `json:"meta"`
	}
	decode(t, rr, &body)
	if len(body.Data) != 1 || body.Meta.Total != 1 || body.Meta.Limit != 5 {
		t.Errorf("unexpected list %+v", body)
	}

	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/translations?limit=0", http.NoBody))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestRateLimitedPipelineRoutes(t *testing.T) {
	engine := gin.New()
	h, err := NewHandlers(Deps{
		Runner:            &fakeRunner{},
		Results:           storagetest.NewStarted(),
		History:           &fakeHistory{},
		AllowedExtensions: []string{"mp4"},
		RateLimit:         1,
		Logger:            logger.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandlers: %v", err)
	}
	Register(engine, h)

	var codes []int
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, multipartRequest(t, "/api/v1/translations", "movie.mp4", "French"))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected [201 429], got %v", codes)
	}
}

func TestNewHandlersRequiresDeps(t *testing.T) {
	_, err := NewHandlers(Deps{})
	if err == nil || !strings.Contains(err.Error(), "runner, results, history") {
		t.Errorf("expected missing deps error, got %v", err)
	}
}
