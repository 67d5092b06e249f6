package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/storage"
	"github.com/kbukum/subtitler/testutil"
)

// ErrNotStarted is returned by reads and writes before Start.
var ErrNotStarted = errors.New("storage-test: component not started")

type object struct {
	body    []byte
	written time.Time
}

// Component keeps objects in a map and runs under the component
// lifecycle. A nil map means stopped.
type Component struct {
	mu      sync.RWMutex
	objects map[string]object

	// FailUploads, when set, is returned by every Upload.
	FailUploads error
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
	_ storage.Storage        = (*Component)(nil)
)

// NewComponent returns a stopped store. Start it before use.
func NewComponent() *Component { return &Component{} }

// NewStarted skips the registry for tests that only need a Storage.
func NewStarted() *Component {
	return &Component{objects: map[string]object{}}
}

func (c *Component) Name() string { return "storage-test" }

func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects != nil {
		return errors.New("storage-test: already started")
	}
	c.objects = map[string]object{}
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	c.objects = nil
	c.mu.Unlock()
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.objects == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects == nil {
		return ErrNotStarted
	}
	clear(c.objects)
	return nil
}

// Paths lists stored keys in order.
func (c *Component) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.objects))
}

func (c *Component) Upload(_ context.Context, path string, r io.Reader) error {
	if c.FailUploads != nil {
		return c.FailUploads
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("storage-test: read %s: %w", path, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.objects == nil {
		return ErrNotStarted
	}
	c.objects[path] = object{body: body, written: time.Now()}
	return nil
}

func (c *Component) Download(_ context.Context, path string) (io.ReadCloser, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.objects == nil {
		return nil, ErrNotStarted
	}
	obj, ok := c.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	return io.NopCloser(bytes.NewReader(obj.body)), nil
}

func (c *Component) Delete(_ context.Context, path string) error {
	c.mu.Lock()
	delete(c.objects, path)
	c.mu.Unlock()
	return nil
}

func (c *Component) Exists(_ context.Context, path string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.objects[path]
	return ok, nil
}

func (c *Component) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []storage.FileInfo{}
	for _, path := range slices.Sorted(maps.Keys(c.objects)) {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		obj := c.objects[path]
		out = append(out, storage.FileInfo{
			Path:         path,
			Size:         int64(len(obj.body)),
			LastModified: obj.written,
			ContentType:  "application/x-subrip",
		})
	}
	return out, nil
}
