package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"webar-backend/internal/models"
)

type HealthHandler struct {
	ready *atomic.Bool
}

func NewHealthHandler(ready *atomic.Bool) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// Health reports 200 once the store connection is confirmed live, 503
// while the service is still starting.
func (h *HealthHandler) Health(c *gin.Context) {
	if h.ready.Load() {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "starting"})
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: "WebAR API running"})
}
