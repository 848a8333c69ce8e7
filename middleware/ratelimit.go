package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor is one client IP's token bucket plus its last activity, so
// idle buckets can be reaped.
type visitor struct {
	bucket *rate.Limiter
	seen   time.Time
}

// RateLimit applies a per-IP token bucket of r requests/second with the
// given burst. The portal sits on the public internet, so the map is
// reaped periodically to keep one-off crawlers from accumulating.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	go func() {
		for range time.Tick(5 * time.Minute) {
			cutoff := time.Now().Add(-10 * time.Minute)
			mu.Lock()
			for ip, v := range visitors {
				if v.seen.Before(cutoff) {
					delete(visitors, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{bucket: rate.NewLimiter(r, burst)}
			visitors[ip] = v
		}
		v.seen = time.Now()
		mu.Unlock()

		if !v.bucket.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
