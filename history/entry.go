package history

import "time"

// Status is the terminal outcome of one run.
type Status string

const (
	StatusTranslated Status = "translated"
	StatusFailed     Status = "failed"
)

// Entry is one recorded run.
type Entry struct {
	ID               string        `json:"id"`
	Filename         string        `json:"filename"`
	Language         string        `json:"language"`
	Status           Status        `json:"status"`
	ErrorCode        string        `json:"error_code,omitempty"`
	ErrorMessage     string        `json:"error_message,omitempty"`
	SourceBlocks     int           `json:"source_blocks"`
	TranslatedBlocks int           `json:"translated_blocks"`
	StoragePath      string        `json:"storage_path,omitempty"`
	Duration         time.Duration `json:"duration_ns"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Succeeded reports whether the run produced a translation.
func (e Entry) Succeeded() bool { return e.Status == StatusTranslated }
