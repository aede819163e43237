package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateProjectRequest struct {
	Name           string `json:"name"`
	AssetType      string `json:"asset_type"`
	ModelURL       string `json:"model_url"`
	ModelPublicID  string `json:"model_public_id,omitempty"`
	VideoURL       string `json:"video_url,omitempty"`
	MarkerType     string `json:"marker_type"`
	MarkerURL      string `json:"marker_url,omitempty"`
	MarkerPublicID string `json:"marker_public_id,omitempty"`
	ChromaKeyColor string `json:"chroma_key_color,omitempty"`
}

type UpdateProjectRequest struct {
	Name string `json:"name"`
}

type CreateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ProjectLimit *int   `json:"project_limit,omitempty"`
}

type UpdateUserRequest struct {
	ProjectLimit *int `json:"project_limit"`
}
