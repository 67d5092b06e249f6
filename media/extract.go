package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/process"
	"github.com/kbukum/subtitler/provider"
)

// ErrExtraction matches every *ExtractError through errors.Is.
var ErrExtraction = errors.New("media: audio extraction failed")

// Kind separates failures of the tool from failures around it.
type Kind int

const (
	// KindToolFailure: ffmpeg exited non-zero or wrote no output.
	KindToolFailure Kind = iota + 1
	// KindLocalFailure: the stale output could not be removed, the binary
	// could not be started, or the output could not be inspected.
	KindLocalFailure
)

func (k Kind) String() string {
	switch k {
	case KindToolFailure:
		return "tool_failure"
	case KindLocalFailure:
		return "local_failure"
	default:
		return "unknown"
	}
}

// ExtractError describes a failed extraction.
type ExtractError struct {
	Kind Kind
	// Diagnostics is ffmpeg stderr, or the local error text.
	Diagnostics string
	// ExitCode is -1 when ffmpeg did not run to completion.
	ExitCode int
	Err      error
}

func (e *ExtractError) Error() string {
	msg := fmt.Sprintf("media: extraction %s (exit %d)", e.Kind, e.ExitCode)
	if line := firstLine(e.Diagnostics); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *ExtractError) Unwrap() error { return e.Err }

func (e *ExtractError) Is(target error) bool { return target == ErrExtraction }

// Extraction is a successful run.
type Extraction struct {
	AudioPath string
	Stderr    string
	Duration  time.Duration
}

// Extractor runs ffmpeg to pull the audio track out of a video.
type Extractor struct {
	cfg    Config
	runner provider.RequestResponse[process.Command, *process.Result]
	log    *logger.Logger
}

// NewExtractor runs ffmpeg from cfg through a logged process adapter. A
// nil log discards output.
func NewExtractor(cfg Config, log *logger.Logger) *Extractor {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	adapter := process.NewAdapter(process.Config{Name: cfg.FFmpegBinary, GracePeriod: cfg.GracePeriod})
	return &Extractor{
		cfg:    cfg,
		runner: provider.WithLogging[process.Command, *process.Result](log)(adapter),
		log:    log,
	}
}

// AudioPath is the output path Extract uses for inputPath.
func (e *Extractor) AudioPath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	out := base + "." + e.cfg.AudioExt
	if out == inputPath {
		out = base + ".audio." + e.cfg.AudioExt
	}
	return out
}

// Extract converts inputPath to a sibling audio file. An existing output is
// removed first, so repeated runs on the same input succeed.
func (e *Extractor) Extract(ctx context.Context, inputPath string) (*Extraction, error) {
	out := e.AudioPath(inputPath)

	if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, localFailure(fmt.Errorf("remove stale output: %w", err))
	}

	res, err := e.runner.Execute(ctx, process.Command{
		Binary:      e.cfg.FFmpegBinary,
		Args:        []string{"-y", "-hide_banner", "-loglevel", "error", "-i", inputPath, "-vn", out},
		GracePeriod: e.cfg.GracePeriod,
	})
	stderr := ""
	if res != nil {
		stderr = strings.TrimSpace(string(res.Stderr))
	}
	if err != nil {
		code := process.ExitCodeOf(err)
		var exitErr *process.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExtractError{Kind: KindToolFailure, Diagnostics: stderr, ExitCode: code, Err: err}
		}
		diag := err.Error()
		if stderr != "" {
			diag = stderr
		}
		return nil, &ExtractError{Kind: KindLocalFailure, Diagnostics: diag, ExitCode: code, Err: err}
	}

	info, err := os.Stat(out)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &ExtractError{
			Kind:        KindToolFailure,
			Diagnostics: withFallback(stderr, "ffmpeg exited 0 but wrote no output"),
			ExitCode:    0,
			Err:         err,
		}
	case err != nil:
		return nil, localFailure(fmt.Errorf("stat output: %w", err))
	case info.IsDir():
		return nil, localFailure(fmt.Errorf("output %s is a directory", out))
	}

	e.log.Debug("audio extracted", logger.Fields("input", filepath.Base(inputPath), "output", filepath.Base(out), "bytes", info.Size()))
	return &Extraction{AudioPath: out, Stderr: stderr, Duration: res.Duration}, nil
}

// Version returns the first line of "ffmpeg -version".
func (e *Extractor) Version(ctx context.Context) (string, error) {
	res, err := e.runner.Execute(ctx, process.Command{Binary: e.cfg.FFmpegBinary, Args: []string{"-version"}})
	if err != nil {
		return "", fmt.Errorf("ffmpeg unavailable: %w", err)
	}
	return firstLine(string(res.Stdout)), nil
}

// Check fails unless "ffmpeg -version" runs and reports an ffmpeg build.
func (e *Extractor) Check(ctx context.Context) error {
	v, err := e.Version(ctx)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(v, "ffmpeg") {
		return fmt.Errorf("ffmpeg -version: unexpected output %q", v)
	}
	return nil
}

func localFailure(err error) *ExtractError {
	return &ExtractError{Kind: KindLocalFailure, Diagnostics: err.Error(), ExitCode: -1, Err: err}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func withFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
