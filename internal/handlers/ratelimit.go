package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware is a fixed-window per-IP counter, in process memory.
// It is a boundary guard only: when this service scales horizontally the
// limit is per instance, and a shared counter store should replace it.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	type window struct {
		start time.Time
		count int
	}
	var (
		mu      sync.Mutex
		windows = map[string]*window{}
	)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		w, ok := windows[ip]
		if !ok || now.Sub(w.start) >= time.Minute {
			w = &window{start: now}
			windows[ip] = w
		}
		w.count++
		over := w.count > perMinute
		mu.Unlock()

		if over {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}
