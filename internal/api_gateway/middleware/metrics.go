package middleware

import (
	"time"

	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template.
// Unmatched paths are grouped under "unmatched" to keep label cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
