package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orderpulse/ordersbff/internal/metrics"
)

// MetricsMiddleware records request counts and latencies by matched route.
func MetricsMiddleware(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		reg.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		reg.HTTPLatencySec.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
