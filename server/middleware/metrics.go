package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/consul-service/observability"
)

// unmatchedRoute labels requests that no route matched, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics returns a Gin middleware recording request count, latency and the
// in-flight gauge. The route label is the registered template, not the raw
// path. A nil metrics disables recording.
func Metrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		metrics.RequestStarted()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.RequestFinished(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
