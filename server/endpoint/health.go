package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the fixed body of the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health returns a handler that always reports {"status":"healthy"}. It does
// not consult the registry or any component: if the process can answer, it is
// alive. Use Readiness for component state.
func Health() gin.HandlerFunc {
	body := HealthResponse{Status: "healthy"}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, body)
	}
}
