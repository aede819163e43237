package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"webar-backend/internal/database"
	"webar-backend/internal/logutils"
	"webar-backend/internal/models"
)

type PublicStore interface {
	GetPublicProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
}

// ViewCache is the optional read-through cache in front of the public
// resolver.
type ViewCache interface {
	Get(ctx context.Context, projectID string) (*models.PublicProjectResponse, bool)
	Set(ctx context.Context, projectID string, view *models.PublicProjectResponse)
	Invalidate(ctx context.Context, projectID string)
}

// PublicHandler resolves a project id into the fields the AR viewer
// needs. Intentionally unauthenticated and ownership-free.
type PublicHandler struct {
	store PublicStore
	cache ViewCache
}

func NewPublicHandler(store PublicStore, cache ViewCache) *PublicHandler {
	return &PublicHandler{
		store: store,
		cache: cache,
	}
}

func (h *PublicHandler) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	if h.cache != nil {
		if view, ok := h.cache.Get(c.Request.Context(), projectID.String()); ok {
			c.JSON(http.StatusOK, view)
			return
		}
	}

	project, err := h.store.GetPublicProject(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		logutils.Log.WithError(err).Error("failed to resolve public project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	view := models.NewPublicProjectResponse(project)
	if h.cache != nil {
		h.cache.Set(c.Request.Context(), projectID.String(), &view)
	}
	c.JSON(http.StatusOK, view)
}
