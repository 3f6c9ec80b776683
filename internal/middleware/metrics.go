package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mingshu/tutor-api/internal/service"
)

// Metrics records per-route request metrics. The scrape endpoint itself
// is excluded so Prometheus polling does not skew the series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
