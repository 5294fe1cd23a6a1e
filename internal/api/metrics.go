package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/observability"
)

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
