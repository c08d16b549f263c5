package dto

import (
	"time"

	"cafe-media/internal/domain"
)

type PresignRequest struct {
	Kind        domain.PhotoKind `json:"kind" validate:"omitempty,oneof=place menu"`
	ContentType string           `json:"content_type" validate:"required"`
	SizeBytes   int64            `json:"size_bytes" validate:"gte=0"`
}

type PresignResponse struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ObjectKey string            `json:"object_key"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type ConfirmRequest struct {
	ObjectKey string           `json:"object_key" validate:"required"`
	Kind      domain.PhotoKind `json:"kind" validate:"omitempty,oneof=place menu"`
	IsCover   *bool            `json:"is_cover"`
	Position  *int             `json:"position" validate:"omitempty,gte=0"`
}

type ReorderRequest struct {
	PhotoIDs []string `json:"photo_ids" validate:"required,dive,required"`
}

type PhotosResponse struct {
	Photos []domain.PhotoRecord `json:"photos"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
