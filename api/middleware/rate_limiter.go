package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter allows a fixed number of requests per client address within a
// sliding window.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per window and client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a request of client. When the client is over its limit the
// request is not recorded and the time until the oldest request leaves the
// window is returned.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	recent := rl.seen[client][:0]
	for _, t := range rl.seen[client] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.limit {
		rl.seen[client] = recent
		return false, recent[0].Sub(cutoff)
	}
	rl.seen[client] = append(recent, now)
	rl.prune(cutoff)
	return true, 0
}

// prune forgets clients without requests in the window.
func (rl *RateLimiter) prune(cutoff time.Time) {
	for client, times := range rl.seen {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.seen, client)
		}
	}
}

func clientAddr(c *gin.Context) string {
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.ClientIP()
	}
	return host
}

// RateLimitMiddleware answers 429 with a Retry-After header once a client is over its limit.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.Allow(clientAddr(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please wait."})
			return
		}
		c.Next()
	}
}
