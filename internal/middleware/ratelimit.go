package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter enforces a sliding-window request budget per key.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	go l.sweep()
	return l
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	times := l.seen[key]
	// Entries are appended in order; trim the expired prefix.
	expired := 0
	for expired < len(times) && now.Sub(times[expired]) >= l.window {
		expired++
	}
	times = times[expired:]
	if len(times) >= l.limit {
		l.seen[key] = times
		return false
	}
	l.seen[key] = append(times, now)
	return true
}

func (l *RateLimiter) sweep() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-l.window)
		for key, times := range l.seen {
			if len(times) == 0 || !times[len(times)-1].After(cutoff) {
				delete(l.seen, key)
			}
		}
		l.mu.Unlock()
	}
}

// rateKey scopes the budget to the account or record a route acts on when
// the route names one. All bot traffic arrives from the collaborator's
// egress address, so keying only by IP would pool every user into a single
// budget; routes that carry the actor in the request body still fall back
// to the caller's IP.
func rateKey(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return "id:" + id
	}
	if id := c.Query("user_id"); id != "" {
		return "id:" + id
	}
	return "ip:" + c.ClientIP()
}

// RateLimit returns a middleware enforcing the limiter's budget.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(rateKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
