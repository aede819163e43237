package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"webar-backend/internal/auth"
	"webar-backend/internal/database"
	"webar-backend/internal/logutils"
	"webar-backend/internal/models"
)

// CredentialStore is the slice of the store the login handler needs.
type CredentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthHandler struct {
	store  CredentialStore
	tokens *auth.TokenManager
}

func NewAuthHandler(store CredentialStore, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		store:  store,
		tokens: tokens,
	}
}

// Login verifies an email/password pair and returns a session token.
// Unknown email and wrong password produce the same response so account
// existence is not leaked.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "email and password are required"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
			return
		}
		logutils.Log.WithError(err).Error("login lookup failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(auth.Identity{
		ID:   user.ID.String(),
		Name: user.Name,
		Role: user.Role,
	})
	if err != nil {
		logutils.Log.WithError(err).Error("failed to sign token")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}
