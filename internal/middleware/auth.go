package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"webar-backend/internal/auth"
	"webar-backend/internal/models"
)

const IdentityKey = "identity"

// Auth validates the bearer token and attaches the caller's identity to
// the context. It never touches the data store.
func Auth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid authorization header format",
				Message: `expected "Bearer <token>"`,
			})
			return
		}

		identity, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RequireRole rejects callers whose role does not match. Registered once
// per route group, after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok || identity.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: role + " role required"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by Auth.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}
