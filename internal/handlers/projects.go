package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"webar-backend/internal/cloudinary"
	"webar-backend/internal/database"
	"webar-backend/internal/logutils"
	"webar-backend/internal/middleware"
	"webar-backend/internal/models"
)

type ProjectStore interface {
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	RenameProject(ctx context.Context, userID, projectID uuid.UUID, name string) (*models.Project, error)
	DeleteProject(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error)
}

// AssetDestroyer removes an externally stored object by its provider
// handle.
type AssetDestroyer interface {
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// ViewInvalidator drops a project's cached public view.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, projectID string)
}

type ProjectsHandler struct {
	store       ProjectStore
	storage     AssetDestroyer
	cache       ViewInvalidator
	viewBaseURL string
}

func NewProjectsHandler(store ProjectStore, storage AssetDestroyer, cache ViewInvalidator, viewBaseURL string) *ProjectsHandler {
	return &ProjectsHandler{
		store:       store,
		storage:     storage,
		cache:       cache,
		viewBaseURL: strings.TrimSuffix(viewBaseURL, "/"),
	}
}

func (h *ProjectsHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	projects, err := h.store.ListProjects(c.Request.Context(), userID)
	if err != nil {
		logutils.Log.WithError(err).Error("failed to list projects")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	out := make([]models.ProjectResponse, len(projects))
	for i := range projects {
		out[i] = models.NewProjectResponse(&projects[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProjectsHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.AssetType == "" {
		req.AssetType = models.AssetTypeModel
	}
	if msg := validateCreateProject(&req); msg != "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msg})
		return
	}

	projectID := uuid.New()
	project := &models.Project{
		ID:             projectID,
		UserID:         userID,
		Name:           req.Name,
		AssetType:      req.AssetType,
		ModelURL:       req.ModelURL,
		ModelPublicID:  nullString(req.ModelPublicID),
		VideoURL:       nullString(req.VideoURL),
		MarkerType:     req.MarkerType,
		ViewURL:        h.viewBaseURL + "/view/" + projectID.String(),
		ChromaKeyColor: nullString(req.ChromaKeyColor),
	}
	if req.MarkerType == models.MarkerTypeImage {
		project.MarkerURL = nullString(req.MarkerURL)
		project.MarkerPublicID = nullString(req.MarkerPublicID)
	}

	created, err := h.store.CreateProject(c.Request.Context(), project)
	if err != nil {
		if errors.Is(err, database.ErrQuotaExceeded) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "project limit reached"})
			return
		}
		logutils.Log.WithError(err).Error("failed to create project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	c.JSON(http.StatusCreated, models.NewProjectResponse(created))
}

func (h *ProjectsHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}

	project, err := h.store.RenameProject(c.Request.Context(), userID, projectID, req.Name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		logutils.Log.WithError(err).Error("failed to update project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), projectID.String())
	}
	c.JSON(http.StatusOK, models.NewProjectResponse(project))
}

// Delete removes the row first, then cleans up external storage. The row
// deletion is the authoritative outcome; cleanup failures are logged and
// swallowed, since the row is already gone and the operation cannot be
// meaningfully retried.
func (h *ProjectsHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}

	deleted, err := h.store.DeleteProject(c.Request.Context(), userID, projectID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		logutils.Log.WithError(err).Error("failed to delete project")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		return
	}

	h.cleanupProjectAssets(c.Request.Context(), deleted)
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), projectID.String())
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "project deleted"})
}

func (h *ProjectsHandler) cleanupProjectAssets(ctx context.Context, p *models.Project) {
	if h.storage == nil {
		return
	}
	if p.ModelPublicID.Valid {
		resourceType := cloudinary.ResourceTypeFor(p.AssetType)
		if err := h.storage.Destroy(ctx, p.ModelPublicID.String, resourceType); err != nil {
			logutils.Log.WithError(err).WithFields(logutils.Fields{
				"project_id": p.ID, "public_id": p.ModelPublicID.String,
			}).Warn("failed to delete stored asset")
		}
	}
	if p.MarkerPublicID.Valid {
		if err := h.storage.Destroy(ctx, p.MarkerPublicID.String, cloudinary.ResourceTypeImage); err != nil {
			logutils.Log.WithError(err).WithFields(logutils.Fields{
				"project_id": p.ID, "public_id": p.MarkerPublicID.String,
			}).Warn("failed to delete stored marker")
		}
	}
}

func validateCreateProject(req *models.CreateProjectRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if req.ModelURL == "" {
		return "model_url is required"
	}
	if req.AssetType != models.AssetTypeModel && req.AssetType != models.AssetTypeVideo {
		return "asset_type must be model or video"
	}
	switch req.MarkerType {
	case models.MarkerTypeImage:
		if req.MarkerURL == "" {
			return "marker_url is required for image markers"
		}
	case models.MarkerTypeQR:
		// QR markers are generated client-side from the view URL.
	default:
		return "marker_type must be image or qr"
	}
	return ""
}

// callerID resolves the authenticated caller's account id, answering the
// request itself when the identity is missing or malformed.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	identity, exists := middleware.CurrentIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "identity not found"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(identity.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid identity"})
		return uuid.Nil, false
	}
	return userID, true
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
