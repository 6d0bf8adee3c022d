package middleware

import (
	"strconv"

	"studio-booking/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware counts requests by route template so unmatched paths
// cannot explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.IncHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()))
	}
}
