package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Alive is the liveness probe. It touches no dependencies: a live process
// with a broken procurement connection should still pass liveness and fail
// loudly in logs instead of being restarted in a loop.
func (h *HealthHandler) Alive(c *gin.Context) {
	c.Status(http.StatusOK)
}
