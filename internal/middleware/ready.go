package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"webar-backend/internal/models"
)

// RequireReady refuses traffic with 503 until the store connection is
// confirmed live. Every /api route sits behind it.
func RequireReady(ready *atomic.Bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready.Load() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "service unavailable, database not ready"})
			return
		}
		c.Next()
	}
}
