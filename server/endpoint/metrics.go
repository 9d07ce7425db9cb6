package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Metrics mounts a Prometheus exposition handler on a Gin route.
func Metrics(h http.Handler) gin.HandlerFunc {
	return gin.WrapH(h)
}
