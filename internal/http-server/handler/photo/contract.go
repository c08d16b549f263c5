package photo

import (
	"context"

	"cafe-media/internal/domain"
)

type mediaUsecase interface {
	Presign(ctx context.Context, target domain.UploadTarget, contentType string, size int64) (*domain.PresignedUpload, error)
	Confirm(ctx context.Context, target domain.UploadTarget, key string, meta domain.ConfirmMetadata) (*domain.ConfirmResult, error)
	ListPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error)
	Reorder(ctx context.Context, cafeID string, kind domain.PhotoKind, photoIDs []string) ([]domain.PhotoRecord, error)
	SetCover(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error)
	DeletePhoto(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error)
}
