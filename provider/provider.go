package provider

import "context"

// Provider is the base interface all providers implement.
type Provider interface {
	Name() string
	// IsAvailable reports whether the provider can take requests right now.
	IsAvailable(ctx context.Context) bool
}
