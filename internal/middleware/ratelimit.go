package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rejectedMessage is the user-visible body for throttled requests.
const rejectedMessage = "Limite de requisições excedido. Tente novamente em alguns instantes."

type windowEntry struct {
	windowStart time.Time
	count       int
}

// FixedWindowLimiter admits up to limit requests per key within each fixed
// window. The counter resets when a new window starts. Idle keys are removed
// by a janitor goroutine.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
	}
}

// Allow reports whether a request for key may proceed now.
func (l *FixedWindowLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ent, ok := l.entries[key]
	if !ok || now.Sub(ent.windowStart) >= l.window {
		l.entries[key] = &windowEntry{windowStart: now, count: 1}
		return true
	}
	if ent.count >= l.limit {
		return false
	}
	ent.count++
	return true
}

// Cleanup removes entries whose window has long expired.
func (l *FixedWindowLimiter) Cleanup() {
	cutoff := time.Now().Add(-2 * l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, ent := range l.entries {
		if ent.windowStart.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// StartJanitor cleans idle keys periodically until the context is done.
func (l *FixedWindowLimiter) StartJanitor(ctx interface{ Done() <-chan struct{} }) {
	t := time.NewTicker(2 * l.window)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

// RateLimit throttles requests per client IP with the given limiter.
func RateLimit(limiter *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"mensagem": rejectedMessage})
			return
		}
		c.Next()
	}
}
