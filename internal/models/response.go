package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type SignatureResponse struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
}

type ProjectResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	AssetType      string    `json:"asset_type"`
	ModelURL       string    `json:"model_url"`
	ModelPublicID  string    `json:"model_public_id,omitempty"`
	VideoURL       string    `json:"video_url,omitempty"`
	MarkerType     string    `json:"marker_type"`
	MarkerURL      string    `json:"marker_url,omitempty"`
	MarkerPublicID string    `json:"marker_public_id,omitempty"`
	ViewURL        string    `json:"view_url"`
	ChromaKeyColor string    `json:"chroma_key_color,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PublicProjectResponse is the unauthenticated view: only what the AR
// viewer needs, no owner or storage identifiers.
type PublicProjectResponse struct {
	Name           string `json:"name"`
	AssetType      string `json:"asset_type"`
	ModelURL       string `json:"model_url"`
	VideoURL       string `json:"video_url,omitempty"`
	MarkerType     string `json:"marker_type"`
	MarkerURL      string `json:"marker_url,omitempty"`
	ChromaKeyColor string `json:"chroma_key_color,omitempty"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ProjectLimit int       `json:"project_limit"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewProjectResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		AssetType:      p.AssetType,
		ModelURL:       p.ModelURL,
		ModelPublicID:  p.ModelPublicID.String,
		VideoURL:       p.VideoURL.String,
		MarkerType:     p.MarkerType,
		MarkerURL:      p.MarkerURL.String,
		MarkerPublicID: p.MarkerPublicID.String,
		ViewURL:        p.ViewURL,
		ChromaKeyColor: p.ChromaKeyColor.String,
		CreatedAt:      p.CreatedAt,
	}
}

func NewPublicProjectResponse(p *Project) PublicProjectResponse {
	return PublicProjectResponse{
		Name:           p.Name,
		AssetType:      p.AssetType,
		ModelURL:       p.ModelURL,
		VideoURL:       p.VideoURL.String,
		MarkerType:     p.MarkerType,
		MarkerURL:      p.MarkerURL.String,
		ChromaKeyColor: p.ChromaKeyColor.String,
	}
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		ProjectLimit: u.ProjectLimit,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}
