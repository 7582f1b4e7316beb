package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/trimwise/trimwise-api/pkg/metrics"
)

// KeyLimiter decides whether a request identified by key may proceed.
//
// The in-memory implementation below is process-local and advisory only: in a
// multi-instance deployment each instance counts independently, so horizontal
// scaling requires swapping in an implementation backed by a shared store.
// That is a deployment decision, not something this package assumes away.
type KeyLimiter interface {
	Allow(key string) bool
}

type windowEntry struct {
	count int
	reset time.Time
}

// FixedWindowLimiter allows a fixed number of requests per key within a fixed
// time window. Counters live in an expiring cache whose janitor evicts stale
// keys; the reset decision itself uses the stored window boundary so the
// limiter stays deterministic under an injected clock.
type FixedWindowLimiter struct {
	entries *gocache.Cache
	limit   int
	window  time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per window.
func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		// Entries outlive their window slightly so a reset is always decided
		// by the stored boundary, never by cache eviction racing it.
		entries: gocache.New(2*window, window),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it is within quota.
// The count is updated atomically with respect to concurrent requests for the
// same key.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if v, ok := l.entries.Get(key); ok {
		entry := v.(*windowEntry)
		if now.Before(entry.reset) {
			entry.count++
			return entry.count <= l.limit
		}
	}

	l.entries.Set(key, &windowEntry{count: 1, reset: now.Add(l.window)}, gocache.DefaultExpiration)
	return true
}

// SubmissionQuotaMiddleware enforces the per-origin lead submission quota.
// It runs before any body parsing so over-quota callers cost nothing beyond
// the connection itself.
func SubmissionQuotaMiddleware(limiter KeyLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			metrics.RateLimitRejections.WithLabelValues("submission_quota").Inc()
			metrics.LeadSubmissions.WithLabelValues("rate_limited").Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please wait a minute and try again.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
