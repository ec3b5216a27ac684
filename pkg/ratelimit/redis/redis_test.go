package redis

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taskgate/taskgate/pkg/ratelimit"
)

// setupLimiter connects to the Redis named by TEST_REDIS_ADDR. Tests are
// skipped when no instance is available.
func setupLimiter(t *testing.T) *Limiter {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis integration tests")
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping: could not reach Redis at %s: %v", addr, err)
	}

	t.Cleanup(func() { client.Close() })
	return New(client)
}

// testKey returns a unique key per test so runs never interfere.
func testKey(t *testing.T) string {
	return fmt.Sprintf("test:%s:%d", t.Name(), time.Now().UnixNano())
}

func TestAllow_ExceedsLimit(t *testing.T) {
	l := setupLimiter(t)
	limit := ratelimit.Limit{Requests: 5, Window: time.Minute}
	key := testKey(t)

	for i := 1; i <= 5; i++ {
		dec, err := l.Allow(context.Background(), key, limit)
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
		if !dec.Allowed {
			t.Fatalf("request %d denied within budget", i)
		}
		if dec.Remaining != 5-i {
			t.Errorf("request %d: remaining = %d, want %d", i, dec.Remaining, 5-i)
		}
	}

	dec, err := l.Allow(context.Background(), key, limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allowed {
		t.Fatal("request 6 allowed, want denied")
	}
	if dec.RetryAfter <= 0 || dec.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want in (0, 60s]", dec.RetryAfter)
	}
}

func TestAllow_CounterExpires(t *testing.T) {
	l := setupLimiter(t)
	limit := ratelimit.Limit{Requests: 1, Window: time.Second}
	key := testKey(t)

	if dec, _ := l.Allow(context.Background(), key, limit); !dec.Allowed {
		t.Fatal("first request denied")
	}
	if dec, _ := l.Allow(context.Background(), key, limit); dec.Allowed {
		t.Fatal("second request allowed within the window")
	}

	// The key's TTL is the window; once it expires the next request
	// starts a fresh window at 1.
	time.Sleep(1100 * time.Millisecond)

	dec, err := l.Allow(context.Background(), key, limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("first request of a fresh window denied")
	}
}

func TestAllow_ConcurrentNeverOverAdmits(t *testing.T) {
	l := setupLimiter(t)
	limit := ratelimit.Limit{Requests: 20, Window: time.Minute}
	key := testKey(t)

	const total = 30
	var allowed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, err := l.Allow(context.Background(), key, limit)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if dec.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 20 {
		t.Errorf("allowed = %d of %d, want exactly 20", got, total)
	}
}

func TestAllow_NoLimit(t *testing.T) {
	l := setupLimiter(t)

	dec, err := l.Allow(context.Background(), testKey(t), ratelimit.Limit{Requests: 0, Window: time.Minute})
	if err != nil || !dec.Allowed {
		t.Fatal("zero limit must allow without touching the store")
	}
}
