package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter
type Limiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	mu         sync.Mutex
	lastRefill time.Time
}

// NewLimiter creates a new token bucket rate limiter
// maxTokens: maximum number of tokens in the bucket
// refillRate: how often to add one token to the bucket
func NewLimiter(maxTokens int, refillRate time.Duration) *Limiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillRate <= 0 {
		refillRate = time.Millisecond
	}
	return &Limiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed immediately
// Returns true if a token is available and consumed
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillTokens()

	if l.tokens > 0 {
		l.tokens--
		return true
	}

	return false
}

// WaitContext blocks until a token is available or ctx is done.
func (l *Limiter) WaitContext(ctx context.Context) error {
	for {
		if l.Allow() {
			return nil
		}

		timer := time.NewTimer(l.pollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TokensAvailable returns the current number of tokens available
func (l *Limiter) TokensAvailable() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillTokens()
	return l.tokens
}

func (l *Limiter) pollInterval() time.Duration {
	return l.refillRate / time.Duration(l.maxTokens)
}

// refillTokens adds tokens based on elapsed time
// Must be called with mutex held
func (l *Limiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill)

	tokensToAdd := int(elapsed / l.refillRate)

	if tokensToAdd > 0 {
		l.tokens = min(l.maxTokens, l.tokens+tokensToAdd)
		// Keep the remainder so partial refill periods are not lost.
		l.lastRefill = l.lastRefill.Add(time.Duration(tokensToAdd) * l.refillRate)
	}
}
