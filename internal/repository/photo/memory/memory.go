// Package memory keeps photo records in process memory. It backs the dev
// server when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"cafe-media/internal/domain"
	"cafe-media/internal/repository/photo"
)

type PhotosRepository struct {
	mu          sync.RWMutex
	photos      map[string]domain.PhotoRecord
	submissions map[string]domain.SubmissionRecord
}

func NewPhotosRepository() *PhotosRepository {
	return &PhotosRepository{
		photos:      make(map[string]domain.PhotoRecord),
		submissions: make(map[string]domain.SubmissionRecord),
	}
}

func (r *PhotosRepository) ListPhotos(_ context.Context, cafeID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photos := []domain.PhotoRecord{}
	for _, p := range r.photos {
		if p.CafeID == cafeID && p.Kind == kind {
			photos = append(photos, p)
		}
	}

	sort.Slice(photos, func(i, j int) bool {
		if photos[i].Position != photos[j].Position {
			return photos[i].Position < photos[j].Position
		}
		return photos[i].CreatedAt.Before(photos[j].CreatedAt)
	})

	return photos, nil
}

func (r *PhotosRepository) GetPhoto(_ context.Context, cafeID, photoID string) (*domain.PhotoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.photos[photoID]
	if !ok || p.CafeID != cafeID {
		return nil, photo.ErrPhotoNotFound
	}
	return &p, nil
}

func (r *PhotosRepository) InsertPhoto(_ context.Context, p *domain.PhotoRecord, layout []domain.PhotoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.photos[p.ID]; ok {
		return photo.ErrDuplicateKey
	}
	if err := r.checkLayout(p.CafeID, layout, p.ID); err != nil {
		return err
	}

	r.photos[p.ID] = *p
	r.applyLayout(layout, p.ID)
	return nil
}

func (r *PhotosRepository) UpdateLayout(_ context.Context, cafeID string, photos []domain.PhotoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLayout(cafeID, photos, ""); err != nil {
		return err
	}
	r.applyLayout(photos, "")
	return nil
}

// checkLayout and applyLayout leave the photo with ID skip alone.
func (r *PhotosRepository) checkLayout(cafeID string, photos []domain.PhotoRecord, skip string) error {
	for _, p := range photos {
		if p.ID == skip {
			continue
		}
		stored, ok := r.photos[p.ID]
		if !ok || stored.CafeID != cafeID {
			return photo.ErrPhotoNotFound
		}
	}
	return nil
}

func (r *PhotosRepository) applyLayout(photos []domain.PhotoRecord, skip string) {
	for _, p := range photos {
		if p.ID == skip {
			continue
		}
		stored := r.photos[p.ID]
		stored.Position = p.Position
		stored.IsCover = p.IsCover
		r.photos[p.ID] = stored
	}
}

func (r *PhotosRepository) DeletePhoto(_ context.Context, cafeID, photoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.photos[photoID]
	if !ok || p.CafeID != cafeID {
		return photo.ErrPhotoNotFound
	}
	delete(r.photos, photoID)
	return nil
}

func (r *PhotosRepository) SaveSubmission(_ context.Context, s *domain.SubmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.submissions[s.ID]; ok {
		return photo.ErrDuplicateKey
	}
	r.submissions[s.ID] = *s
	return nil
}
