// Package memory provides an in-process fixed-window rate limiter.
//
// Counters live in process memory, so the limit only holds for a single
// gateway instance. It exists for tests and single-instance development;
// horizontally scaled deployments must use the Redis backend.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/taskgate/taskgate/pkg/ratelimit"
)

// Limiter tracks per-key fixed-window counters in memory.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter

	// now is replaceable for tests.
	now func() time.Time
}

type counter struct {
	count       int
	windowStart time.Time
}

// Ensure Limiter implements ratelimit.Limiter at compile time.
var _ ratelimit.Limiter = (*Limiter)(nil)

// New creates an empty in-process limiter.
func New() *Limiter {
	return &Limiter{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Allow increments the counter for key under a single mutex, which makes
// the increment-or-reset atomic within this process.
func (l *Limiter) Allow(_ context.Context, key string, limit ratelimit.Limit) (ratelimit.Decision, error) {
	if limit.Requests <= 0 {
		return ratelimit.Decision{Allowed: true}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowStart) >= limit.Window {
		// Fresh window: reset to 1, never increment a stale value.
		l.counters[key] = &counter{count: 1, windowStart: now}
		return ratelimit.Decision{Allowed: true, Remaining: limit.Requests - 1}, nil
	}

	c.count++
	if c.count > limit.Requests {
		remaining := limit.Window - now.Sub(c.windowStart)
		return ratelimit.Decision{
			RetryAfter: ratelimit.ClampRetryAfter(remaining),
		}, nil
	}

	return ratelimit.Decision{Allowed: true, Remaining: limit.Requests - c.count}, nil
}

// SetNowFunc overrides the clock. Test hook.
func (l *Limiter) SetNowFunc(now func() time.Time) {
	l.now = now
}
