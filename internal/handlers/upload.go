package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"webar-backend/internal/logutils"
	"webar-backend/internal/models"
)

// UploadSigner issues a time-bound signature a client presents to the
// storage provider with its direct upload.
type UploadSigner interface {
	SignUpload() (signature string, timestamp int64, err error)
	APIKey() string
}

type UploadHandler struct {
	signer UploadSigner
}

func NewUploadHandler(signer UploadSigner) *UploadHandler {
	return &UploadHandler{signer: signer}
}

// GetSignature hands the client what it needs to push a file straight to
// the provider; no bytes ever pass through this backend.
func (h *UploadHandler) GetSignature(c *gin.Context) {
	signature, timestamp, err := h.signer.SignUpload()
	if err != nil {
		logutils.Log.WithError(err).Error("failed to generate upload signature")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to generate upload signature"})
		return
	}

	c.JSON(http.StatusOK, models.SignatureResponse{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    h.signer.APIKey(),
	})
}
