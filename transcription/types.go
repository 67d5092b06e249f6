package transcription

// Output formats accepted by OpenAI-compatible transcription APIs.
const (
	FormatSRT         = "srt"
	FormatVTT         = "vtt"
	FormatText        = "text"
	FormatJSON        = "json"
	FormatVerboseJSON = "verbose_json"
)

// ValidFormats lists the formats a provider may be asked for.
var ValidFormats = []string{FormatSRT, FormatVTT, FormatText, FormatJSON, FormatVerboseJSON}

// IsTextFormat reports whether the response body is the transcript itself
// rather than a JSON document.
func IsTextFormat(format string) bool {
	switch format {
	case FormatSRT, FormatVTT, FormatText:
		return true
	}
	return false
}

type TranscriptionRequest struct {
	AudioPath string `json:"audio_path"`
	// Language is an ISO-639-1 hint. Empty lets the service detect it.
	Language string `json:"language,omitempty"`
	// Model and Format override the provider defaults.
	Model  string `json:"model,omitempty"`
	Format string `json:"format,omitempty"`
}

type TranscriptionResponse struct {
	// Text is the transcript in Format. For srt this is the whole SRT document.
	Text     string    `json:"text"`
	Format   string    `json:"format"`
	Segments []Segment `json:"segments,omitempty"`
	// Duration is in seconds. Only verbose_json reports it.
	Duration float64 `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
}

// Segment is a time-aligned piece of transcript. Times are in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
