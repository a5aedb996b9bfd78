package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-api/internal/service"
)

// unmatchedRoute labels requests that hit no route, so scanners cannot grow
// the path label set.
const unmatchedRoute = "unmatched"

// Metrics records one observation per request keyed by route template.
// Requests for the skipped route templates are not recorded.
func Metrics(metrics *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}

	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		if _, ok := skipped[c.FullPath()]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
