package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	apperrors "github.com/kbukum/subtitler/errors"
	"github.com/kbukum/subtitler/util"
)

// Workspace is a private temp directory for one pipeline run.
type Workspace struct {
	dir  string
	once sync.Once
	err  error
}

// NewWorkspace creates a fresh directory under baseDir (os.TempDir() when
// empty).
func NewWorkspace(baseDir string) (*Workspace, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o750); err != nil {
			return nil, apperrors.UploadFailed(fmt.Errorf("create temp dir: %w", err))
		}
	}
	dir, err := os.MkdirTemp(baseDir, "subtitler-*")
	if err != nil {
		return nil, apperrors.UploadFailed(fmt.Errorf("create workspace: %w", err))
	}
	return &Workspace{dir: dir}, nil
}

// Dir is the workspace directory. It is removed by Cleanup.
func (w *Workspace) Dir() string { return w.dir }

// SaveUpload copies r into a new uniquely named file that keeps the
// lowercased extension of filename. Nothing about the content is checked.
func (w *Workspace) SaveUpload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.UploadFailed(err)
	}

	f, err := os.CreateTemp(w.dir, "upload-*"+util.Ext(filename))
	if err != nil {
		return "", apperrors.UploadFailed(fmt.Errorf("create upload file: %w", err))
	}
	path := f.Name()

	if _, err := io.Copy(f, ctxReader{ctx: ctx, r: r}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", apperrors.UploadFailed(fmt.Errorf("write upload: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", apperrors.UploadFailed(fmt.Errorf("close upload: %w", err))
	}
	return path, nil
}

// Cleanup removes the workspace and everything in it. Later calls return the
// first result.
func (w *Workspace) Cleanup() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}

// ctxReader stops a long copy once the request is gone.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
