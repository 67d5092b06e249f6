package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/logger"
)

// Component runs a Hub within the component registry. A stopped component
// cannot be started again.
type Component struct {
	hub  *Hub
	path string
	wg   sync.WaitGroup
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent owns a hub that starts with the registry and closes every
// stream on Stop.
func NewComponent(path string, log *logger.Logger, opts ...HubOption) *Component {
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{hub: NewHub(log.WithComponent("events"), opts...), path: path}
}

func (c *Component) Hub() *Hub { return c.hub }

func (c *Component) Name() string { return "events" }

func (c *Component) Start(_ context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop closes every stream and waits for the hub loop to exit.
func (c *Component) Stop(_ context.Context) error {
	c.hub.Stop()
	c.wg.Wait()
	return nil
}

func (c *Component) Health(_ context.Context) component.Health {
	select {
	case <-c.hub.Done():
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "stopped"}
	default:
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.ClientCount()),
	}
}

func (c *Component) Describe() component.Description {
	return component.Description{Name: "Event Stream", Type: "sse", Details: "path=" + c.path}
}
