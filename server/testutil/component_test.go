package testutil

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/server/middleware"
	"github.com/kbukum/subtitler/testutil"
)

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent()
	ctx := context.Background()

	if comp.BaseURL() != "" {
		t.Error("expected empty BaseURL before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}

	testutil.Start(t, comp)

	if comp.BaseURL() == "" {
		t.Error("expected BaseURL after Start")
	}
	if err := comp.Start(ctx); err == nil {
		t.Error("expected error on double Start")
	}
	testutil.RequireHealthy(t, comp)
}

func TestComponent_ServesWithMiddleware(t *testing.T) {
	comp := NewComponent()
	comp.GinEngine().GET("/hello", func(c *gin.Context) {
		c.String(http.StatusOK, "world")
	})
	testutil.Start(t, comp)

	resp, err := http.Get(comp.BaseURL() + "/hello")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if string(body) != "world" {
		t.Errorf("expected 'world', got %q", body)
	}
	if resp.Header.Get(middleware.HeaderRequestID) == "" {
		t.Error("expected request id header from the middleware chain")
	}
}

func TestComponent_Reset(t *testing.T) {
	comp := NewComponent()
	comp.GinEngine().GET("/old", func(c *gin.Context) { c.Status(http.StatusOK) })
	testutil.Start(t, comp)
	testutil.Reset(t, comp)

	resp, err := http.Get(comp.BaseURL() + "/old")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after reset, got %d", resp.StatusCode)
	}
}

func TestComponent_ResetKeepsConstructorRoutes(t *testing.T) {
	comp := NewComponent(func(e *gin.Engine) {
		e.GET("/kept", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	})
	testutil.Start(t, comp)
	testutil.Reset(t, comp)

	resp, err := http.Get(comp.URL("/kept"))
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 after reset, got %d", resp.StatusCode)
	}
}
