package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/subtitler/provider"
)

// PutRequest is a single object write.
type PutRequest struct {
	Path string
	Data []byte
}

// PutResponse reports where the object landed.
type PutResponse struct {
	Path string
	Size int
}

// Writer exposes PutBytes as a RequestResponse provider so callers can wrap
// it with the provider middleware.
type Writer struct {
	name    string
	storage Storage
}

var _ provider.RequestResponse[PutRequest, PutResponse] = (*Writer)(nil)

// NewWriter creates a provider that writes to s.
func NewWriter(name string, s Storage) *Writer {
	return &Writer{name: name, storage: s}
}

func (w *Writer) Name() string { return w.name }

func (w *Writer) IsAvailable(_ context.Context) bool { return w.storage != nil }

func (w *Writer) Execute(ctx context.Context, req PutRequest) (PutResponse, error) {
	if err := PutBytes(ctx, w.storage, req.Path, req.Data); err != nil {
		return PutResponse{}, fmt.Errorf("storage put %s: %w", req.Path, err)
	}
	return PutResponse{Path: req.Path, Size: len(req.Data)}, nil
}
