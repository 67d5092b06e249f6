package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/subtitler/component"
)

// Start starts c and registers a cleanup that stops it when the test ends.
func Start(t testing.TB, c component.Component) {
	t.Helper()
	StartWithContext(t, context.Background(), c)
}

// StartWithContext is Start with a caller-supplied context.
func StartWithContext(t testing.TB, ctx context.Context, c component.Component) {
	t.Helper()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	t.Cleanup(func() {
		if err := c.Stop(ctx); err != nil {
			t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Reset clears a started test component, failing the test on error.
func Reset(t testing.TB, c TestComponent) {
	t.Helper()
	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}

// RequireHealthy fails the test unless c reports healthy.
func RequireHealthy(t testing.TB, c component.Component) {
	t.Helper()
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Fatalf("expected %s to be healthy, got %s (%s)", c.Name(), h.Status, h.Message)
	}
}
