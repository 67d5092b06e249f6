package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultStderrLimit caps captured stderr. ffmpeg prints progress there, so
// only the tail is kept.
const DefaultStderrLimit = 64 << 10

// Run starts cmd and waits for it. Stdout is captured in full, stderr up to
// the last StderrLimit bytes. Cancelling ctx sends SIGTERM to the process
// group and SIGKILL once the grace period is over.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: binary is required")
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // the binary is operator configured
	c.Dir = cmd.Dir
	c.Env = environ(cmd.Env)
	c.Stdin = cmd.Stdin

	var stdout bytes.Buffer
	stderr := newTail(cmd.StderrLimit)
	c.Stdout = &stdout
	c.Stderr = stderr

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error { return terminateGroup(c.Process) }
	c.WaitDelay = cmd.GracePeriod
	if c.WaitDelay <= 0 {
		c.WaitDelay = DefaultGracePeriod
	}

	start := time.Now()
	if err := c.Start(); err != nil {
		if ctx.Err() != nil {
			return &Result{ExitCode: -1}, fmt.Errorf("process: not started: %w", ctx.Err())
		}
		return &Result{ExitCode: -1}, &StartError{Binary: cmd.Binary, Err: err}
	}
	waitErr := c.Wait()

	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	return res, classify(ctx, waitErr, res.ExitCode)
}

func classify(ctx context.Context, err error, code int) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("process: killed by context: %w", ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: code, Err: err}
	}
	return fmt.Errorf("process: wait: %w", err)
}

// terminateGroup signals the whole group so children spawned by the
// binary go down too.
func terminateGroup(p *os.Process) error {
	if p == nil {
		return nil
	}
	return unix.Kill(-p.Pid, unix.SIGTERM)
}

func environ(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}

// tail keeps the last limit bytes written to it.
type tail struct {
	buf       []byte
	limit     int
	truncated bool
}

func newTail(limit int) *tail {
	if limit <= 0 {
		limit = DefaultStderrLimit
	}
	return &tail{limit: limit}
}

func (t *tail) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
		t.truncated = true
	}
	return len(p), nil
}

func (t *tail) Bytes() []byte {
	if !t.truncated {
		return t.buf
	}
	return append([]byte("...\n"), t.buf...)
}
