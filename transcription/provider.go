package transcription

import (
	"context"

	"github.com/kbukum/subtitler/provider"
)

// Provider turns an audio file into transcript text.
type Provider interface {
	provider.Provider

	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
}
