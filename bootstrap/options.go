package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/logger"
)

const DefaultGracefulTimeout = 15 * time.Second

// Option tunes an App before its registry is built.
type Option func(*options)

type options struct {
	log         *logger.Logger
	grace       time.Duration
	summary     io.Writer
	stopTimeout time.Duration
}

func newOptions(opts []Option) options {
	o := options{
		grace:       DefaultGracefulTimeout,
		summary:     os.Stderr,
		stopTimeout: component.DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger replaces the logger built from the Logging section and makes
// it the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithGracefulTimeout bounds the whole shutdown sequence.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *options) { o.grace = d }
}

// WithSummaryWriter redirects the startup table. io.Discard hides it.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *options) { o.summary = w }
}

// WithComponentStopTimeout bounds each component Stop within the shutdown.
func WithComponentStopTimeout(d time.Duration) Option {
	return func(o *options) { o.stopTimeout = d }
}
