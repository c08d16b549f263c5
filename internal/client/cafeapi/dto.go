package cafeapi

import (
	"time"

	"cafe-media/internal/domain"
)

type presignRequest struct {
	Kind        domain.PhotoKind `json:"kind,omitempty"`
	ContentType string           `json:"content_type"`
	SizeBytes   int64            `json:"size_bytes"`
}

type presignResponse struct {
	UploadURL string            `json:"upload_url" validate:"required,url"`
	Method    string            `json:"method" validate:"omitempty,oneof=PUT POST"`
	Headers   map[string]string `json:"headers"`
	ObjectKey string            `json:"object_key" validate:"required"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type confirmRequest struct {
	ObjectKey string           `json:"object_key"`
	Kind      domain.PhotoKind `json:"kind,omitempty"`
	IsCover   *bool            `json:"is_cover,omitempty"`
	Position  *int             `json:"position,omitempty"`
}

type reorderRequest struct {
	PhotoIDs []string `json:"photo_ids"`
}

type photosResponse struct {
	Photos []domain.PhotoRecord `json:"photos"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
