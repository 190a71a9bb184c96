package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Bulkhead rejection errors.
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	Name string
	// MaxConcurrent caps calls in flight. Defaults to 1.
	MaxConcurrent int
	// MaxWait is how long a caller may queue for a slot. Zero rejects at
	// once when every slot is taken.
	MaxWait time.Duration
	// Hooks, each called with Name.
	OnReject  func(name string)
	OnAcquire func(name string)
	OnRelease func(name string)
}

// Bulkhead is a counting semaphore. Callers beyond MaxConcurrent queue for
// up to MaxWait and are then rejected.
type Bulkhead struct {
	config  BulkheadConfig
	slots   chan struct{}
	waiting atomic.Int32
}

// NewBulkhead creates a bulkhead with all slots free.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	return &Bulkhead{
		config: config,
		slots:  make(chan struct{}, config.MaxConcurrent),
	}
}

// Execute runs fn in a slot. The slot is freed when fn returns or panics.
// A caller that gets no slot receives ErrBulkheadFull, ErrBulkheadTimeout
// or the context error.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		b.notify(b.config.OnReject)
		return err
	}
	b.notify(b.config.OnAcquire)
	defer func() {
		<-b.slots
		b.notify(b.config.OnRelease)
	}()
	return fn()
}

// ExecuteWithResult is Execute for functions that return a value.
func ExecuteWithResult[T any](b *Bulkhead, ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
	}
	if b.config.MaxWait <= 0 {
		return ErrBulkheadFull
	}

	b.waiting.Add(1)
	defer b.waiting.Add(-1)

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) notify(hook func(string)) {
	if hook != nil {
		hook(b.config.Name)
	}
}

// InUse returns the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.slots) }

// Waiting returns the number of callers queued for a slot.
func (b *Bulkhead) Waiting() int { return int(b.waiting.Load()) }

// Capacity returns MaxConcurrent.
func (b *Bulkhead) Capacity() int { return b.config.MaxConcurrent }

// IsRejection reports whether err came from the bulkhead refusing a slot.
func IsRejection(err error) bool {
	return errors.Is(err, ErrBulkheadFull) || errors.Is(err, ErrBulkheadTimeout)
}
