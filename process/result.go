package process

import (
	"errors"
	"fmt"
	"time"
)

// Result holds the output and status of a finished subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 when the process never started or was killed.
	ExitCode int
	Duration time.Duration
}

// StartError means the binary could not be started at all.
type StartError struct {
	Binary string
	Err    error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("process: start %s: %v", e.Binary, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExitError means the process ran and exited with a non-zero status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process: exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// IsStartError reports whether err is a StartError.
func IsStartError(err error) bool {
	var se *StartError
	return errors.As(err, &se)
}

// ExitCodeOf returns the exit code carried by err, or -1.
func ExitCodeOf(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}
