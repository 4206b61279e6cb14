package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum delay between successive requests made through it.
// A Pacer belongs to one source; sharing it between goroutines is safe and
// serialises all of them behind the same delay.
type Pacer struct {
	delay   time.Duration
	limiter *rate.Limiter

	mu   sync.Mutex
	last time.Time
}

// NewPacer creates a pacer that lets one request through every delay.
// A zero or negative delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{
		delay:   delay,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the delay since the previous request has elapsed, then
// records the current time as the new last-request timestamp.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.last = time.Now()
	p.mu.Unlock()
	return nil
}

// Delay returns the configured minimum spacing.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// LastRequest returns when the most recent request was let through.
func (p *Pacer) LastRequest() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
