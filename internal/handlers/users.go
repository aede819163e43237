package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"webar-backend/internal/database"
	"webar-backend/internal/logutils"
	"webar-backend/internal/models"
)

type UserStore interface {
	ListUsers(ctx context.Context, excludeID uuid.UUID) ([]models.User, error)
	CreateUser(ctx context.Context, name, email, passwordHash string, projectLimit int) (*models.User, error)
	UpdateUserLimit(ctx context.Context, userID uuid.UUID, projectLimit int) (*models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
}

// UsersHandler owns account administration. All routes sit behind the
// admin role gate.
type UsersHandler struct {
	store        UserStore
	projects     *ProjectsHandler
	defaultLimit int
}

func NewUsersHandler(store UserStore, projects *ProjectsHandler, defaultLimit int) *UsersHandler {
	return &UsersHandler{
		store:        store,
		projects:     projects,
		defaultLimit: defaultLimit,
	}
}

// List returns every account except the caller's own, newest first.
func (h *UsersHandler) List(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	users, err := h.store.ListUsers(c.Request.Context(), adminID)
	if err != nil {
		logutils.Log.WithError(err).Error("failed to list users")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = models.NewUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *UsersHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name, email and password are required"})
		return
	}

	limit := h.defaultLimit
	if req.ProjectLimit != nil {
		if *req.ProjectLimit < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "project_limit must be >= 0"})
			return
		}
		limit = *req.ProjectLimit
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), database.BcryptCost)
	if err != nil {
		logutils.Log.WithError(err).Error("failed to hash password")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), req.Name, req.Email, string(hash), limit)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "user already exists"})
			return
		}
		logutils.Log.WithError(err).Error("failed to create user")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	c.JSON(http.StatusCreated, models.NewUserResponse(user))
}

func (h *UsersHandler) Update(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "user not found"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectLimit == nil || *req.ProjectLimit < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "project_limit must be >= 0"})
		return
	}

	user, err := h.store.UpdateUserLimit(c.Request.Context(), userID, *req.ProjectLimit)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "user not found"})
			return
		}
		logutils.Log.WithError(err).Error("failed to update user")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

// Delete removes the account; the database cascades the project rows.
// Owned projects' external assets are captured first and cleaned up
// best-effort after the row deletion, same policy as project delete.
func (h *UsersHandler) Delete(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "user not found"})
		return
	}

	projects, err := h.store.ListProjects(c.Request.Context(), userID)
	if err != nil {
		logutils.Log.WithError(err).Error("failed to enumerate user projects")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "user not found"})
			return
		}
		logutils.Log.WithError(err).Error("failed to delete user")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	for i := range projects {
		h.projects.cleanupProjectAssets(c.Request.Context(), &projects[i])
		if h.projects.cache != nil {
			h.projects.cache.Invalidate(c.Request.Context(), projects[i].ID.String())
		}
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "user deleted"})
}
