package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name labels the limiter in callbacks.
	Name string
	// Rate is tokens added per second.
	Rate float64
	// Burst is the bucket size. Defaults to Rate.
	Burst int
	// OnLimit is called each time Allow refuses a request.
	OnLimit func(name string)
}

// RateLimiter is a token bucket shared by concurrent callers. Wait borrows
// against future refills, so queued waiters are released 1/Rate apart.
type RateLimiter struct {
	config RateLimiterConfig

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10.0
	}
	if config.Burst <= 0 {
		config.Burst = int(config.Rate)
	}
	return &RateLimiter{
		config: config,
		tokens: float64(config.Burst),
		last:   time.Now(),
	}
}

// Name returns the configured name.
func (rl *RateLimiter) Name() string { return rl.config.Name }

// Allow takes a token if one is available and never blocks.
func (rl *RateLimiter) Allow() bool {
	if _, ok := rl.take(false); ok {
		return true
	}
	if rl.config.OnLimit != nil {
		rl.config.OnLimit(rl.config.Name)
	}
	return false
}

// Wait takes a token, sleeping until one is due. If ctx ends first the
// reserved token is handed back and ctx.Err() is returned.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wait, _ := rl.take(true)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		rl.giveBack()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Tokens returns the tokens currently in the bucket. It is negative while
// waiters hold reservations.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill(time.Now())
	return rl.tokens
}

// take removes one token. With borrow set the bucket may go negative and
// the returned duration is how long until the caller's token is earned.
func (rl *RateLimiter) take(borrow bool) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())
	if rl.tokens >= 1 {
		rl.tokens--
		return 0, true
	}
	if !borrow {
		return 0, false
	}
	wait := time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
	rl.tokens--
	return wait, true
}

func (rl *RateLimiter) giveBack() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill(time.Now())
	rl.tokens++
	if limit := float64(rl.config.Burst); rl.tokens > limit {
		rl.tokens = limit
	}
}

func (rl *RateLimiter) refill(now time.Time) {
	rl.tokens += now.Sub(rl.last).Seconds() * rl.config.Rate
	rl.last = now
	if limit := float64(rl.config.Burst); rl.tokens > limit {
		rl.tokens = limit
	}
}
