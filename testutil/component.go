package testutil

import (
	"context"

	"github.com/kbukum/subtitler/component"
)

// TestComponent is a component whose state can be cleared between test
// cases without a full restart.
type TestComponent interface {
	component.Component

	// Reset restores the component to its freshly started state.
	Reset(ctx context.Context) error
}
