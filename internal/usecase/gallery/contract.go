package gallery

import (
	"context"

	"cafe-media/internal/domain"
)

type photoLister interface {
	ListPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error)
}

type photoMutator interface {
	ReorderPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind, photoIDs []string) ([]domain.PhotoRecord, error)
	SetCover(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error)
	DeletePhoto(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error)
}

type photoAPI interface {
	photoLister
	photoMutator
}
