// Package ratelimit defines the fixed-window rate limiting contract used by
// the auth middleware, with pluggable counter backends.
//
// Counters are keyed by principal (or client IP for unauthenticated
// requests) and by request class: reads and writes consume separate
// budgets. A window is fixed, not sliding: the first request for a key
// starts the window, the counter self-expires when the window elapses, and
// the next request starts a fresh window at 1.
//
// Backends must implement the increment as a single atomic operation
// against the counter store. Two concurrent requests racing on the same
// key must never both observe a stale count; the store's atomicity, not
// application locking, is what keeps the limit exact across multiple
// gateway instances.
package ratelimit

import (
	"context"
	"net/http"
	"time"
)

// Limit describes a fixed-window budget: at most Requests requests per
// Window. A non-positive Requests disables the limit.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Decision is the outcome of a counter check.
type Decision struct {
	Allowed bool

	// Remaining is the number of requests left in the current window.
	// Zero when the request was denied.
	Remaining int

	// RetryAfter is how long the caller must wait for a fresh window.
	// Set only when Allowed is false, and always at least one second
	// so it can be surfaced as an integer Retry-After header.
	RetryAfter time.Duration
}

// Limiter checks a single key against a fixed-window budget.
//
// Allow atomically increments the counter for key and reports whether the
// post-increment count is within the limit. An error means the counter
// store could not be reached; callers must fail closed on it.
type Limiter interface {
	Allow(ctx context.Context, key string, limit Limit) (Decision, error)
}

// Class selects which budget applies to a request.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// ClassForMethod maps an HTTP method to a request class. Safe methods
// consume the read budget, everything else the write budget.
func ClassForMethod(method string) Class {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

// Policy holds the per-class budgets. Read limits are expected to exceed
// write limits, reflecting traffic shape; exact values are deployment
// configuration.
type Policy struct {
	Read  Limit
	Write Limit
}

// ForClass returns the budget for the given class.
func (p Policy) ForClass(c Class) Limit {
	if c == ClassWrite {
		return p.Write
	}
	return p.Read
}

// ClampRetryAfter rounds a remaining-window duration up to whole seconds
// and clamps it to at least one second, so backends produce values that
// serialize directly into an integer Retry-After header.
func ClampRetryAfter(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	secs := (d + time.Second - 1) / time.Second
	return secs * time.Second
}
