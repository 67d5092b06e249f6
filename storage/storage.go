package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is wrapped by backends when a key has no object.
var ErrNotFound = errors.New("storage: object not found")

// FileInfo describes one stored object.
type FileInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Storage is the result store. Keys are slash-separated relative paths
// such as "translations/<id>.srt".
type Storage interface {
	Upload(ctx context.Context, path string, reader io.Reader) error
	// Download returns the object body. The caller closes it.
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// List returns every object under prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// SignedURLProvider is implemented by backends that can hand out
// time-limited links to private objects. A non-empty filename makes the
// link download as an attachment with that name.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, path, filename string, expiry time.Duration) (string, error)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
