package process

import (
	"io"
	"strings"
	"time"
)

// DefaultGracePeriod is the wait between SIGTERM and SIGKILL when a command
// does not set one.
const DefaultGracePeriod = 5 * time.Second

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	Args   []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to os.Environ as key=value pairs.
	Env   []string
	Stdin io.Reader
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	GracePeriod time.Duration
	// StderrLimit caps captured stderr. Zero means DefaultStderrLimit.
	StderrLimit int
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}
