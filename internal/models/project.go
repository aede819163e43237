package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	AssetTypeModel = "model"
	AssetTypeVideo = "video"

	MarkerTypeImage = "image"
	MarkerTypeQR    = "qr"
)

// Project is one AR project row. Public IDs (ModelPublicID, MarkerPublicID)
// are the storage provider's handles; null means the object is not
// externally managed and must not be cleaned up on delete.
type Project struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	AssetType      string
	ModelURL       string
	ModelPublicID  sql.NullString
	VideoURL       sql.NullString
	MarkerType     string
	MarkerURL      sql.NullString
	MarkerPublicID sql.NullString
	ViewURL        string
	ChromaKeyColor sql.NullString
	CreatedAt      time.Time
}
