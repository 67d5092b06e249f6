package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/logger"
)

// Component opens the history store on Start and closes it on Stop.
type Component struct {
	cfg Config
	log *logger.Logger

	mu    sync.RWMutex
	store *Store
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent defers opening the database until Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("history")}
}

func (c *Component) Name() string { return "history" }

// Store returns the open store, or nil before Start.
func (c *Component) Store() *Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

func (c *Component) Start(ctx context.Context) error {
	s, err := Open(ctx, c.cfg)
	if err != nil {
		return fmt.Errorf("history start: %w", err)
	}
	c.mu.Lock()
	c.store = s
	c.mu.Unlock()
	c.log.Info("history database opened", map[string]interface{}{"path": c.cfg.Path})
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func (c *Component) Health(ctx context.Context) component.Health {
	s := c.Store()
	if s == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not open"}
	}
	if err := s.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{Name: "History", Type: "sqlite", Details: "path=" + c.cfg.Path}
}
