// Package redis provides a Redis-backed fixed-window rate limiter shared
// across all gateway instances.
//
// The counter update runs as a single Lua script, so the increment and the
// window reset are one atomic round trip. Concurrent requests on the same
// key observe strictly increasing counts; limit+1 concurrent requests can
// never all be allowed.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taskgate/taskgate/pkg/ratelimit"
)

// incrScript increments the counter and starts its expiry on first use.
// The key's TTL is the window length, so stale counters self-expire and
// the first INCR of a fresh window creates the counter at 1.
// Returns {count, ttl_millis}.
var incrScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// Limiter is a Redis-backed fixed-window rate limiter.
type Limiter struct {
	client *goredis.Client
	prefix string
}

// Ensure Limiter implements ratelimit.Limiter at compile time.
var _ ratelimit.Limiter = (*Limiter)(nil)

// New creates a limiter on an existing Redis client.
func New(client *goredis.Client) *Limiter {
	return &Limiter{
		client: client,
		prefix: "ratelimit:",
	}
}

// Allow atomically increments the counter for key and checks it against
// the limit. Any Redis error is returned as-is; the caller fails closed.
func (l *Limiter) Allow(ctx context.Context, key string, limit ratelimit.Limit) (ratelimit.Decision, error) {
	if limit.Requests <= 0 {
		return ratelimit.Decision{Allowed: true}, nil
	}

	res, err := incrScript.Run(ctx, l.client, []string{l.prefix + key}, limit.Window.Milliseconds()).Slice()
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("incrementing rate limit counter: %w", err)
	}
	if len(res) != 2 {
		return ratelimit.Decision{}, fmt.Errorf("unexpected script result length %d", len(res))
	}

	count, ok := res[0].(int64)
	if !ok {
		return ratelimit.Decision{}, fmt.Errorf("unexpected count type %T", res[0])
	}
	ttlMillis, ok := res[1].(int64)
	if !ok {
		return ratelimit.Decision{}, fmt.Errorf("unexpected ttl type %T", res[1])
	}

	if count > int64(limit.Requests) {
		ttl := time.Duration(ttlMillis) * time.Millisecond
		if ttlMillis < 0 {
			// PTTL reports no expiry only if the key outlived its window
			// marker; treat the full window as the worst case.
			ttl = limit.Window
		}
		return ratelimit.Decision{
			RetryAfter: ratelimit.ClampRetryAfter(ttl),
		}, nil
	}

	return ratelimit.Decision{
		Allowed:   true,
		Remaining: limit.Requests - int(count),
	}, nil
}

// Ping verifies the counter store is reachable. Used by readiness checks.
func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
