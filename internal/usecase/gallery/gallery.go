// Package gallery serves café photo lists from a shared cache and applies
// reorder, cover and delete mutations, always adopting the server's answer.
package gallery

import (
	"context"
	"fmt"

	"cafe-media/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

type Service struct {
	api    photoMutator
	cache  *Cache
	logger *zlog.Zerolog
}

func NewService(api photoAPI, cache *Cache, logger *zlog.Zerolog) *Service {
	return &Service{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, cafeID string, kind domain.PhotoKind, opts ...GetOption) ([]domain.PhotoRecord, error) {
	return s.cache.Get(ctx, cafeID, kind, opts...)
}

// Invalidate is called after anything that changed the gallery behind the cache's back, like a confirm.
func (s *Service) Invalidate(cafeID string, kind domain.PhotoKind) {
	s.cache.Invalidate(cafeID, kind)
}

// Reorder commits a new order. Whatever local drag state led to orderedIDs is
// thrown away; the returned list is the server's.
func (s *Service) Reorder(ctx context.Context, cafeID string, orderedIDs []string, kind domain.PhotoKind) ([]domain.PhotoRecord, error) {
	photos, err := s.api.ReorderPhotos(ctx, cafeID, kind, orderedIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("cafe_id", cafeID).Str("kind", string(kind)).Msg("Failed to reorder photos")
		return nil, err
	}

	s.cache.Set(cafeID, kind, photos)
	s.logger.Info().Str("cafe_id", cafeID).Str("kind", string(kind)).Int("photos", len(photos)).Msg("Photos reordered")
	return domain.ClonePhotos(photos), nil
}

// SetCover only applies to place photos; for menu photos it fails without a request.
func (s *Service) SetCover(ctx context.Context, cafeID, photoID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error) {
	if kind != domain.KindPlace {
		return nil, fmt.Errorf("%w: %w", domain.ErrMutation, domain.ErrCoverNotSupported)
	}

	photos, err := s.api.SetCover(ctx, cafeID, photoID)
	if err != nil {
		s.logger.Error().Err(err).Str("cafe_id", cafeID).Str("photo_id", photoID).Msg("Failed to set cover")
		return nil, err
	}

	s.adopt(cafeID, kind, photos)
	s.logger.Info().Str("cafe_id", cafeID).Str("photo_id", photoID).Msg("Cover changed")
	return domain.ClonePhotos(photos), nil
}

// Delete removes a photo. If it was the cover, the server picks the next one.
func (s *Service) Delete(ctx context.Context, cafeID, photoID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error) {
	photos, err := s.api.DeletePhoto(ctx, cafeID, photoID)
	if err != nil {
		s.logger.Error().Err(err).Str("cafe_id", cafeID).Str("photo_id", photoID).Msg("Failed to delete photo")
		return nil, err
	}

	s.adopt(cafeID, kind, photos)
	s.logger.Info().Str("cafe_id", cafeID).Str("photo_id", photoID).Msg("Photo deleted")
	return domain.ClonePhotos(photos), nil
}

// adopt caches a cover or delete response. Those endpoints take no kind, so
// the list is stored under the kind its records carry; when that cannot be
// told (empty or mixed), both lists are dropped and refetched on next read.
func (s *Service) adopt(cafeID string, kind domain.PhotoKind, photos []domain.PhotoRecord) {
	got, ok := listKind(photos)
	if !ok {
		s.cache.Invalidate(cafeID, domain.KindPlace)
		s.cache.Invalidate(cafeID, domain.KindMenu)
		return
	}

	if got != kind {
		s.logger.Warn().Str("cafe_id", cafeID).Str("kind", string(kind)).Str("response_kind", string(got)).Msg("Mutation response belongs to another gallery")
		s.cache.Invalidate(cafeID, kind)
	}
	s.cache.Set(cafeID, got, photos)
}

func listKind(photos []domain.PhotoRecord) (domain.PhotoKind, bool) {
	if len(photos) == 0 {
		return "", false
	}
	kind := photos[0].Kind
	for _, p := range photos[1:] {
		if p.Kind != kind {
			return "", false
		}
	}
	return kind, kind.Valid()
}
