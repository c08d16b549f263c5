package upload

import (
	"context"

	"cafe-media/internal/domain"
	"cafe-media/internal/usecase/gallery"
)

type rotator interface {
	Rotate(file *domain.File, quarterTurns int) (*domain.File, error)
}

type uploadAPI interface {
	Presign(ctx context.Context, target domain.UploadTarget, contentType string, sizeBytes int64) (*domain.PresignedUpload, error)
	Confirm(ctx context.Context, target domain.UploadTarget, objectKey string, meta domain.ConfirmMetadata) (*domain.ConfirmResult, error)
}

type objectUploader interface {
	Put(ctx context.Context, upload *domain.PresignedUpload, file *domain.File) error
}

type photoGallery interface {
	List(ctx context.Context, cafeID string, kind domain.PhotoKind, opts ...gallery.GetOption) ([]domain.PhotoRecord, error)
	Invalidate(cafeID string, kind domain.PhotoKind)
}

type pendingQueue interface {
	Items() []domain.PendingUploadItem
	Complete(id string) error
}
