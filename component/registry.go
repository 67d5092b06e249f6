package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/subtitler/logger"
)

const (
	DefaultStopTimeout   = 10 * time.Second
	DefaultHealthTimeout = 5 * time.Second
)

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order and stops them in
// reverse, so dependencies are registered first.
type Registry struct {
	mu     sync.RWMutex
	order  []*entry
	byName map[string]*entry

	stopTimeout   time.Duration
	healthTimeout time.Duration
	log           *logger.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStopTimeout bounds each component Stop.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.stopTimeout = d }
}

// WithHealthTimeout bounds each component Health probe in HealthAll.
func WithHealthTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.healthTimeout = d }
}

// WithRegistryLogger replaces the global logger.
func WithRegistryLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// NewRegistry returns an empty registry with the default stop and health
// timeouts.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName:        make(map[string]*entry),
		stopTimeout:   DefaultStopTimeout,
		healthTimeout: DefaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.WithComponent("registry")
	}
	return r
}

// Register adds c. Names are unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	e := &entry{component: c}
	r.order = append(r.order, e)
	r.byName[name] = e
	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component not yet running, so a second call picks
// up components registered since the first. On failure the components
// started so far are stopped again.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := 0
	for _, e := range r.order {
		if !e.started {
			pending++
		}
	}
	if pending == 0 {
		return nil
	}
	r.log.Info("starting components", logger.Fields("count", pending))

	for _, e := range r.order {
		if e.started {
			continue
		}
		name := e.component.Name()
		start := time.Now()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, name), err))
			r.rollbackLocked(ctx)
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.DurationFields(name, time.Since(start)))
	}
	return nil
}

func (r *Registry) rollbackLocked(ctx context.Context) {
	for i := len(r.order) - 1; i >= 0; i-- {
		e := r.order[i]
		if !e.started {
			continue
		}
		if err := r.stopOne(ctx, e); err != nil {
			r.log.Warn("rollback stop failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, e.component.Name()), err))
		}
	}
}

// stopOne stops e within the stop timeout and marks it stopped.
func (r *Registry) stopOne(ctx context.Context, e *entry) error {
	stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()
	e.started = false
	return e.component.Stop(stopCtx)
}

// StopAll stops the running components in reverse registration order and
// joins their errors.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		e := r.order[i]
		if !e.started {
			continue
		}
		name := e.component.Name()
		if err := r.stopOne(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, name), err))
			continue
		}
		r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

// HealthAll probes every component in registration order. Each probe gets
// the health timeout.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	comps := r.All()
	results := make([]Health, 0, len(comps))
	for _, c := range comps {
		probeCtx, cancel := context.WithTimeout(ctx, r.healthTimeout)
		results = append(results, c.Health(probeCtx))
		cancel()
	}
	return results
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byName[name]; ok {
		return e.component
	}
	return nil
}

// Started reports whether the named component is running.
func (r *Registry) Started(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return ok && e.started
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.order))
	for i, e := range r.order {
		out[i] = e.component
	}
	return out
}
