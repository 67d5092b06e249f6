package testutil

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/server"
	"github.com/kbukum/subtitler/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Routes registers handlers on a fresh engine.
type Routes func(*gin.Engine)

// Component runs a real server.Server, middleware chain included, behind an
// httptest listener. Routes given to NewComponent are registered again on
// every Reset; routes added later through GinEngine are not.
type Component struct {
	mu     sync.RWMutex
	routes []Routes
	srv    *server.Server
	ts     *httptest.Server
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

func NewComponent(routes ...Routes) *Component {
	c := &Component{routes: routes}
	c.srv = c.build()
	return c
}

func (c *Component) build() *server.Server {
	cfg := &server.Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	srv := server.New(cfg, logger.NewNop())
	for _, r := range c.routes {
		r(srv.GinEngine())
	}
	return srv
}

func (c *Component) GinEngine() *gin.Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv.GinEngine()
}

func (c *Component) Server() *server.Server {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv
}

// BaseURL is empty until Start.
func (c *Component) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

// URL joins path onto BaseURL.
func (c *Component) URL(path string) string { return c.BaseURL() + path }

func (c *Component) Name() string { return "server-test" }

func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts != nil {
		return errors.New("server-test: already started")
	}
	c.listen()
	return nil
}

func (c *Component) listen() {
	c.srv.ApplyMiddleware()
	c.ts = httptest.NewServer(c.srv.Handler())
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts != nil {
		c.ts.Close()
		c.ts = nil
	}
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.ts == nil {
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	}
	return h
}

// Reset swaps in a fresh server. The listener address changes.
func (c *Component) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts == nil {
		return errors.New("server-test: not started")
	}
	c.ts.Close()
	c.srv = c.build()
	c.listen()
	return nil
}
