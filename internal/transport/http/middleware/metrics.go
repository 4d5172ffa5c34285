package middleware

import (
	"strconv"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records latency and count per route template. Unrouted requests
// share one "unmatched" label so scanners hitting random paths cannot blow up
// label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
}
