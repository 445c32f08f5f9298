package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/foodgram/foodgram-backend/internal/errors"
	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles requests per client IP with a token bucket
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	collector *metrics.Collector

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter allows perMinute requests per client, all of them usable in a burst.
// collector may be nil.
func NewRateLimiter(perMinute int, collector *metrics.Collector) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Limit(float64(perMinute) / 60.0),
		burst:     perMinute,
		ttl:       10 * time.Minute,
		collector: collector,
		clients:   make(map[string]*clientLimiter),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if rl.limiterFor(ip).Allow() {
			c.Next()
			return
		}

		GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
			"ip":   ip,
			"path": c.Request.URL.Path,
		})
		if rl.collector != nil {
			rl.collector.RecordRateLimited()
		}

		retryAfter := int(math.Ceil(1.0 / float64(rl.limit)))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		errors.TooManyRequests(c)
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if cl, ok := rl.clients[key]; ok {
		cl.lastAccess = now
		return cl.limiter
	}

	cl := &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst), lastAccess: now}
	rl.clients[key] = cl
	return cl.limiter
}

// Cleanup forgets clients idle for longer than the TTL and returns how many remain
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > rl.ttl {
			delete(rl.clients, key)
		}
	}
	return len(rl.clients)
}
