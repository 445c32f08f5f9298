package middleware

import (
	"time"

	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request count and latency per route pattern
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
