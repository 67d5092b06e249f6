package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/kbukum/subtitler/history"
	"github.com/kbukum/subtitler/media"
	"github.com/kbukum/subtitler/subtitle"
	"github.com/kbukum/subtitler/transcription"
)

// ResultFilename is the object name of a stored translation and the
// download filename offered to users.
const ResultFilename = "translated_subtitles.srt"

// ResultPath is the storage key of the translation produced by run id.
func ResultPath(id string) string {
	return id + "/" + ResultFilename
}

// Input is one upload plus the requested target language.
type Input struct {
	Filename string
	Body     io.Reader
	Language string
}

// Result is the outcome of a successful run.
type Result struct {
	ID          string                   `json:"id"`
	Filename    string                   `json:"filename"`
	Language    string                   `json:"language"`
	Transcript  string                   `json:"transcript"`
	Translation string                   `json:"translation"`
	Comparison  subtitle.Comparison      `json:"comparison"`
	StoragePath string                   `json:"storage_path"`
	Durations   map[string]time.Duration `json:"durations"`
}

// Extractor turns a saved video into an audio file.
type Extractor interface {
	Extract(ctx context.Context, inputPath string) (*media.Extraction, error)
}

// Transcriber turns audio into SRT text.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error)
}

// Translator turns SRT text into SRT text in another language.
type Translator interface {
	Translate(ctx context.Context, transcript, language string) (string, error)
}

// Recorder keeps a log of runs.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}
