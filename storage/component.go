package storage

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/logger"
)

const (
	// probePrefix is listed by Health. A reachable backend lists a missing
	// prefix without error.
	probePrefix = ".health/"
	// slowProbe marks the backend degraded.
	slowProbe = 2 * time.Second
)

// backend boxes the interface so it fits an atomic.Pointer.
type backend struct{ Storage }

// Component owns the result store backend inside the component registry.
// The backend is built on Start and dropped on Stop.
type Component struct {
	cfg     Config
	log     *logger.Logger
	current atomic.Pointer[backend]
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent applies defaults to cfg. The backend is built on Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Storage is nil outside Start and Stop.
func (c *Component) Storage() Storage {
	if b := c.current.Load(); b != nil {
		return b.Storage
	}
	return nil
}

func (c *Component) Name() string                       { return "storage" }
func (c *Component) IsAvailable(_ context.Context) bool { return c.current.Load() != nil }

func (c *Component) Start(ctx context.Context) error {
	s, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.current.Store(&backend{s})
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.current.Store(nil)
	return nil
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	s := c.Storage()
	if s == nil {
		h.Status, h.Message = component.StatusUnhealthy, "storage not initialized"
		return h
	}

	began := time.Now()
	_, err := s.List(ctx, probePrefix)
	took := time.Since(began)
	switch {
	case err != nil:
		h.Status, h.Message = component.StatusUnhealthy, "health probe failed: "+err.Error()
	case took > slowProbe:
		h.Status, h.Message = component.StatusDegraded, "health probe took "+took.Round(time.Millisecond).String()
	}
	return h
}

func (c *Component) Describe() component.Description {
	details := "provider=" + c.cfg.Provider
	switch c.cfg.Provider {
	case ProviderLocal:
		details += " path=" + c.cfg.BasePath
	case ProviderMinio:
		details += " endpoint=" + c.cfg.Endpoint + " bucket=" + c.cfg.Bucket
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
