package chat

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veridianlabs/governport-backend/pkg/config"
)

func newTestLimiter(now *time.Time) *RateLimiter {
	limiter := NewRateLimiter(config.ChatRateLimitConfig{
		Window:   10 * time.Minute,
		Limit:    50,
		Cooldown: 2 * time.Second,
	})
	limiter.now = func() time.Time { return *now }
	limiter.rand = func() float64 { return 1 } // disable the sweep unless a test opts in
	return limiter
}

func TestRateLimiterCooldownRejectsRapidRequests(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(&now)

	if d := limiter.Check("1.2.3.4"); !d.Allowed {
		t.Fatalf("first request should pass")
	}
	now = now.Add(500 * time.Millisecond)
	d := limiter.Check("1.2.3.4")
	if d.Allowed {
		t.Fatalf("request inside cooldown should be rejected")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > 2*time.Second {
		t.Fatalf("expected positive retry-after within cooldown, got %v", d.RetryAfter)
	}

	now = now.Add(d.RetryAfter)
	if d := limiter.Check("1.2.3.4"); !d.Allowed {
		t.Fatalf("request after cooldown should pass, got %+v", d)
	}
}

func TestRateLimiterCeilingRejectsWithRemainingWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(&now)

	for i := 0; i < 50; i++ {
		if d := limiter.Check("5.6.7.8"); !d.Allowed {
			t.Fatalf("request %d should pass, got %+v", i+1, d)
		}
		now = now.Add(2 * time.Second)
	}

	d := limiter.Check("5.6.7.8")
	if d.Allowed {
		t.Fatalf("request over ceiling should be rejected")
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", d.RetryAfter)
	}
	// 50 requests consumed 100s of the 600s window.
	if want := 10*time.Minute - 100*time.Second; d.RetryAfter != want {
		t.Fatalf("expected retry-after %v, got %v", want, d.RetryAfter)
	}
}

func TestRateLimiterWindowExpiryStartsFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(&now)

	for i := 0; i < 50; i++ {
		limiter.Check("9.9.9.9")
		now = now.Add(2 * time.Second)
	}
	if d := limiter.Check("9.9.9.9"); d.Allowed {
		t.Fatalf("expected ceiling hit before window expiry")
	}

	now = now.Add(10 * time.Minute)
	if d := limiter.Check("9.9.9.9"); !d.Allowed {
		t.Fatalf("expected fresh window after expiry, got %+v", d)
	}
	entry := limiter.entries["9.9.9.9"]
	if entry == nil || entry.count != 1 {
		t.Fatalf("expected fresh window count 1, got %+v", entry)
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(&now)

	if d := limiter.Check("a"); !d.Allowed {
		t.Fatalf("first key should pass")
	}
	if d := limiter.Check("b"); !d.Allowed {
		t.Fatalf("second key should not inherit first key's cooldown")
	}
}

func TestRateLimiterSweepEvictsExpiredEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(&now)

	limiter.Check("stale")
	now = now.Add(11 * time.Minute)

	limiter.rand = func() float64 { return 0 } // force the sweep
	limiter.Check("fresh")
	if _, ok := limiter.entries["stale"]; ok {
		t.Fatalf("expected stale entry evicted by sweep")
	}
	if _, ok := limiter.entries["fresh"]; !ok {
		t.Fatalf("expected fresh entry retained")
	}
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/public/chat", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientKey(r); got != "203.0.113.9" {
		t.Fatalf("expected first forwarded entry, got %q", got)
	}

	r = httptest.NewRequest("POST", "/api/public/chat", nil)
	r.Header.Set("CF-Connecting-IP", "198.51.100.7")
	if got := ClientKey(r); got != "198.51.100.7" {
		t.Fatalf("expected connecting ip, got %q", got)
	}

	r = httptest.NewRequest("POST", "/api/public/chat", nil)
	if got := ClientKey(r); got != unknownClientKey {
		t.Fatalf("expected placeholder key, got %q", got)
	}
}
