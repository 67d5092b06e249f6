package component

import (
	"context"
	"fmt"
	"sync"
)

// Func builds a Component out of plain functions. It suits dependencies
// that have no client to open, such as an external binary that only needs a
// health probe.
type Func struct {
	name        string
	kind        string
	details     string
	start       func(context.Context) error
	stop        func(context.Context) error
	healthCheck func(context.Context) error

	mu      sync.RWMutex
	started bool
}

var (
	_ Component   = (*Func)(nil)
	_ Describable = (*Func)(nil)
)

// NewFunc returns a component whose lifecycle hooks are set with the
// With methods. Unset hooks are no-ops.
func NewFunc(name string) *Func {
	return &Func{name: name, kind: "component"}
}

func (f *Func) WithStart(fn func(context.Context) error) *Func {
	f.start = fn
	return f
}

func (f *Func) WithStop(fn func(context.Context) error) *Func {
	f.stop = fn
	return f
}

// WithHealthCheck sets the probe. A nil error reports healthy.
func (f *Func) WithHealthCheck(fn func(context.Context) error) *Func {
	f.healthCheck = fn
	return f
}

// WithDescription sets the startup log line.
func (f *Func) WithDescription(kind, details string) *Func {
	f.kind = kind
	f.details = details
	return f
}

func (f *Func) Name() string { return f.name }

func (f *Func) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return nil
	}
	if f.start != nil {
		if err := f.start(ctx); err != nil {
			return err
		}
	}
	f.started = true
	return nil
}

func (f *Func) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return nil
	}
	f.started = false
	if f.stop != nil {
		return f.stop(ctx)
	}
	return nil
}

func (f *Func) Health(ctx context.Context) Health {
	if f.healthCheck == nil {
		return Health{Name: f.name, Status: StatusHealthy}
	}
	if err := f.healthCheck(ctx); err != nil {
		return Health{Name: f.name, Status: StatusUnhealthy, Message: err.Error()}
	}
	return Health{Name: f.name, Status: StatusHealthy}
}

func (f *Func) Describe() Description {
	return Description{Name: f.name, Type: f.kind, Details: f.details}
}

func (f *Func) String() string {
	return fmt.Sprintf("component %s", f.name)
}
