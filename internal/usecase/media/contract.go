package media

import (
	"context"
	"time"

	"cafe-media/internal/domain"
)

type photoRepository interface {
	ListPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error)
	GetPhoto(ctx context.Context, cafeID, photoID string) (*domain.PhotoRecord, error)
	// InsertPhoto stores photo and applies layout to its siblings in one step;
	// on error nothing is written.
	InsertPhoto(ctx context.Context, photo *domain.PhotoRecord, layout []domain.PhotoRecord) error
	UpdateLayout(ctx context.Context, cafeID string, photos []domain.PhotoRecord) error
	DeletePhoto(ctx context.Context, cafeID, photoID string) error
	SaveSubmission(ctx context.Context, submission *domain.SubmissionRecord) error
}

type fileRepository interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	Stat(ctx context.Context, key string) (*domain.ObjectInfo, error)
	Remove(ctx context.Context, key string) error
	ObjectURL(key string) string
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.PhotoEvent) error
}
