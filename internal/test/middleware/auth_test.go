package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webar-backend/internal/auth"
	"webar-backend/internal/middleware"
	"webar-backend/internal/models"
)

func authRouter(tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Auth(tokens))
	router.GET("/test", func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, identity)
	})
	return router
}

func TestAuth_NoToken(t *testing.T) {
	router := authRouter(auth.NewTokenManager("test-secret", auth.TokenTTL))

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	router := authRouter(auth.NewTokenManager("test-secret", auth.TokenTTL))

	for _, header := range []string{"token-without-scheme", "Basic abc", "Bearer a b"} {
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	router := authRouter(auth.NewTokenManager("test-secret", auth.TokenTTL))

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	other := auth.NewTokenManager("other-secret", auth.TokenTTL)
	token, err := other.Issue(auth.Identity{ID: "user-123", Role: models.RoleStandard})
	require.NoError(t, err)

	router := authRouter(auth.NewTokenManager("test-secret", auth.TokenTTL))
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// An expired token is a clean 401, not a server error.
func TestAuth_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", auth.TokenTTL)
	expired := auth.NewTokenManager("test-secret", -time.Minute)
	token, err := expired.Issue(auth.Identity{ID: "user-123", Role: models.RoleStandard})
	require.NoError(t, err)

	router := authRouter(tokens)
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidTokenAttachesIdentity(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", auth.TokenTTL)
	token, err := tokens.Issue(auth.Identity{ID: "user-123", Name: "Alice", Role: models.RoleAdmin})
	require.NoError(t, err)

	router := authRouter(tokens)
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
	assert.Contains(t, w.Body.String(), "admin")
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(identity auth.Identity) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(middleware.IdentityKey, identity)
		})
		router.Use(middleware.RequireRole(models.RoleAdmin))
		router.GET("/admin", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	req, _ := http.NewRequest("GET", "/admin", nil)

	w := httptest.NewRecorder()
	newRouter(auth.Identity{ID: "u1", Role: models.RoleStandard}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	newRouter(auth.Identity{ID: "u2", Role: models.RoleAdmin}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var ready atomic.Bool

	router := gin.New()
	router.Use(middleware.RequireReady(&ready))
	router.GET("/api/projects", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/api/projects", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	ready.Store(true)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
