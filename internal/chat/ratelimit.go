package chat

import (
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/veridianlabs/governport-backend/pkg/config"
)

// unknownClientKey is the fallback bucket when no client address header is
// present at all. Everyone behind it shares one window, which is fine for
// abuse mitigation.
const unknownClientKey = "unknown"

const sweepProbability = 0.1

// Decision is the outcome of one rate check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type limiterEntry struct {
	count   int
	resetAt time.Time
	lastAt  time.Time
}

// RateLimiter is a process-local fixed-window counter with a per-key cooldown.
// It guards the anonymous chat relay only; it is deliberately not shared
// across instances.
type RateLimiter struct {
	mu       sync.Mutex
	entries  map[string]*limiterEntry
	window   time.Duration
	limit    int
	cooldown time.Duration
	now      func() time.Time
	rand     func() float64
}

// NewRateLimiter builds a limiter from config, falling back to the documented
// defaults for zero values.
func NewRateLimiter(cfg config.ChatRateLimitConfig) *RateLimiter {
	window := cfg.Window
	if window <= 0 {
		window = 10 * time.Minute
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 50
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 2 * time.Second
	}
	return &RateLimiter{
		entries:  make(map[string]*limiterEntry),
		window:   window,
		limit:    limit,
		cooldown: cooldown,
		now:      time.Now,
		rand:     rand.Float64,
	}
}

// Check applies the window and cooldown rules for one request. A successful
// check counts the request and stamps its arrival time.
func (l *RateLimiter) Check(key string) Decision {
	if key == "" {
		key = unknownClientKey
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.rand() < sweepProbability {
		l.sweepLocked(now)
	}

	entry, ok := l.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &limiterEntry{resetAt: now.Add(l.window)}
		l.entries[key] = entry
	}

	if !entry.lastAt.IsZero() {
		if since := now.Sub(entry.lastAt); since < l.cooldown {
			return Decision{RetryAfter: l.cooldown - since}
		}
	}
	if entry.count >= l.limit {
		return Decision{RetryAfter: entry.resetAt.Sub(now)}
	}

	entry.count++
	entry.lastAt = now
	return Decision{Allowed: true}
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	for key, entry := range l.entries {
		if !now.Before(entry.resetAt) {
			delete(l.entries, key)
		}
	}
}

// ClientKey derives the best-effort client address for rate limiting. Spoofed
// headers only let a caller throttle themselves harder or share a bucket.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if connecting := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); connecting != "" {
		return connecting
	}
	return unknownClientKey
}
