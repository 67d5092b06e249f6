package pipeline

import "time"

// State is the position of a run in the pipeline.
type State int

const (
	StateIdle State = iota
	StateFileSaved
	StateAudioExtracted
	StateTranscribed
	StateTranslated
	StateDisplayed
	// StateError is absorbing: nothing follows it.
	StateError
)

var stateNames = [...]string{
	StateIdle:           "idle",
	StateFileSaved:      "file_saved",
	StateAudioExtracted: "audio_extracted",
	StateTranscribed:    "transcribed",
	StateTranslated:     "translated",
	StateDisplayed:      "displayed",
	StateError:          "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDisplayed || s == StateError
}

// Transition is one state change of one run.
type Transition struct {
	RunID    string    `json:"run_id"`
	Filename string    `json:"filename"`
	Language string    `json:"language"`
	From     State     `json:"from"`
	To       State     `json:"to"`
	At       time.Time `json:"at"`
}

// Observer is notified of every state change of every run. It runs on the
// pipeline goroutine and must not block.
type Observer func(t Transition)
