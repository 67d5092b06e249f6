package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

const defaultSlots = 4

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	Name string
	// MaxConcurrent is the number of slots. Default 4.
	MaxConcurrent int
	// MaxWait is how long a caller queues for a slot. Zero fails at once.
	MaxWait time.Duration
	// OnReject runs when a caller gives up without a slot.
	OnReject func(name string, err error)
}

// Bulkhead caps the number of pipeline runs in flight. Waiters are served
// in arrival order.
type Bulkhead struct {
	cfg   BulkheadConfig
	slots *semaphore.Weighted
	inUse atomic.Int64
}

// NewBulkhead allows cfg.MaxConcurrent runs at once.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultSlots
	}
	return &Bulkhead{cfg: cfg, slots: semaphore.NewWeighted(int64(cfg.MaxConcurrent))}
}

// Execute runs fn in a slot. Without a slot in time it returns
// ErrBulkheadFull, ErrBulkheadTimeout or ctx.Err() and fn never runs.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		if b.cfg.OnReject != nil {
			b.cfg.OnReject(b.cfg.Name, err)
		}
		return err
	}
	b.inUse.Add(1)
	defer func() {
		b.inUse.Add(-1)
		b.slots.Release(1)
	}()
	return fn()
}

// ExecuteWithResult is Execute for functions with a result.
func ExecuteWithResult[T any](ctx context.Context, b *Bulkhead, fn func() (T, error)) (T, error) {
	var out T
	err := b.Execute(ctx, func() (err error) {
		out, err = fn()
		return err
	})
	return out, err
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if b.slots.TryAcquire(1) {
		return nil
	}
	if b.cfg.MaxWait <= 0 {
		return ErrBulkheadFull
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.cfg.MaxWait)
	defer cancel()
	if err := b.slots.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBulkheadTimeout
	}
	return nil
}

// InUse returns the number of taken slots.
func (b *Bulkhead) InUse() int { return int(b.inUse.Load()) }

func (b *Bulkhead) MaxConcurrent() int { return b.cfg.MaxConcurrent }
