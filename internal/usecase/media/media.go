// Package media is the development backend behind the photo REST API. It
// issues presigned uploads, commits confirmed objects and owns the gallery
// rules: dense positions per kind and at most one place cover per cafe.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cafe-media/internal/domain"
	repoPhoto "cafe-media/internal/repository/photo"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type MediaUsecase struct {
	photos     photoRepository
	files      fileRepository
	events     eventPublisher
	logger     *zlog.Zerolog
	presignTTL time.Duration
	maxSize    int64
	now        func() time.Time

	// gallery mutations read, rearrange and write back a whole kind
	mu sync.Mutex
}

func NewMediaUsecase(photos photoRepository, files fileRepository, events eventPublisher, logger *zlog.Zerolog, presignTTL time.Duration, maxSize int64) *MediaUsecase {
	if presignTTL <= 0 {
		presignTTL = domain.DefaultPresignTTL
	}
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxUploadSize
	}
	return &MediaUsecase{
		photos:     photos,
		files:      files,
		events:     events,
		logger:     logger,
		presignTTL: presignTTL,
		maxSize:    maxSize,
		now:        time.Now,
	}
}

func (m *MediaUsecase) Presign(ctx context.Context, target domain.UploadTarget, contentType string, size int64) (*domain.PresignedUpload, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	contentType = domain.NormalizeContentType(contentType)
	if !domain.IsAcceptedMediaType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if size > m.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	key := objectKey(target, domain.FormatFromContentType(contentType).Extension())
	uploadURL, err := m.files.PresignPut(ctx, key, m.presignTTL)
	if err != nil {
		m.logger.Error().Err(err).Str("scope", string(target.Scope)).Msg("Failed to presign upload")
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	m.logger.Info().Str("scope", string(target.Scope)).Str("cafe_id", target.CafeID).Str("object_key", key).Msg("Upload presigned")

	return &domain.PresignedUpload{
		UploadURL: uploadURL,
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ObjectKey: key,
		FileURL:   m.files.ObjectURL(key),
		ExpiresAt: m.now().Add(m.presignTTL),
	}, nil
}

// Confirm commits an object the client has uploaded. Confirming the same key
// twice returns the photo committed the first time.
func (m *MediaUsecase) Confirm(ctx context.Context, target domain.UploadTarget, key string, meta domain.ConfirmMetadata) (*domain.ConfirmResult, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if !ownsKey(target, key) {
		return nil, ErrForeignObjectKey
	}

	if _, err := m.files.Stat(ctx, key); err != nil {
		if errors.Is(err, repoPhoto.ErrObjectNotFound) {
			return nil, ErrObjectNotUploaded
		}
		return nil, fmt.Errorf("failed to check uploaded object: %w", err)
	}

	switch target.Scope {
	case domain.ScopeSubmission:
		submission, err := m.confirmSubmission(ctx, target.CafeID, key)
		if err != nil {
			return nil, err
		}
		return &domain.ConfirmResult{Submission: submission}, nil
	case domain.ScopeAvatar:
		avatar := &domain.AvatarRecord{URL: m.files.ObjectURL(key)}
		m.publish(ctx, domain.PhotoEvent{Type: domain.EventAvatarChanged, ObjectKey: key})
		return &domain.ConfirmResult{Avatar: avatar}, nil
	default:
		photo, err := m.confirmPhoto(ctx, target, key, meta)
		if err != nil {
			return nil, err
		}
		return &domain.ConfirmResult{Photo: photo}, nil
	}
}

func (m *MediaUsecase) confirmSubmission(ctx context.Context, cafeID, key string) (*domain.SubmissionRecord, error) {
	submission := &domain.SubmissionRecord{
		ID:        uuid.NewString(),
		CafeID:    cafeID,
		URL:       m.files.ObjectURL(key),
		Status:    domain.SubmissionPending,
		CreatedAt: m.now(),
	}

	if err := m.photos.SaveSubmission(ctx, submission); err != nil {
		m.logger.Error().Err(err).Str("cafe_id", cafeID).Msg("Failed to save submission")
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	m.publish(ctx, domain.PhotoEvent{Type: domain.EventSubmissionCreated, CafeID: cafeID, PhotoID: submission.ID, ObjectKey: key})
	m.logger.Info().Str("cafe_id", cafeID).Str("submission_id", submission.ID).Msg("Submission created")
	return submission, nil
}

func (m *MediaUsecase) confirmPhoto(ctx context.Context, target domain.UploadTarget, key string, meta domain.ConfirmMetadata) (*domain.PhotoRecord, error) {
	kind := target.Kind()
	if meta.Kind != "" && meta.Kind != kind {
		return nil, fmt.Errorf("%w: %s for %s target", ErrInvalidKind, meta.Kind, target.Scope)
	}
	if meta.IsCover && kind != domain.KindPlace {
		return nil, ErrCoverNotSupported
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.photos.ListPhotos(ctx, target.CafeID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	for _, p := range current {
		if p.ObjectKey == key {
			return &p, nil
		}
	}

	photo := domain.PhotoRecord{
		ID:        uuid.NewString(),
		CafeID:    target.CafeID,
		URL:       m.files.ObjectURL(key),
		ObjectKey: key,
		Kind:      kind,
		CreatedAt: m.now(),
	}

	at := meta.Position - 1
	if at < 0 || at > len(current) {
		at = len(current)
	}
	layout := make([]domain.PhotoRecord, 0, len(current)+1)
	layout = append(layout, current[:at]...)
	layout = append(layout, photo)
	layout = append(layout, current[at:]...)

	if meta.IsCover {
		for i := range layout {
			layout[i].IsCover = layout[i].ID == photo.ID
		}
	}
	repack(layout)

	photo = layout[at]
	if err := m.photos.InsertPhoto(ctx, &photo, layout); err != nil {
		m.logger.Error().Err(err).Str("cafe_id", target.CafeID).Str("object_key", key).Msg("Failed to save photo")
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	m.publish(ctx, domain.PhotoEvent{Type: domain.EventPhotoConfirmed, CafeID: target.CafeID, Kind: kind, PhotoID: photo.ID, ObjectKey: key})
	if photo.IsCover {
		m.publish(ctx, domain.PhotoEvent{Type: domain.EventCoverChanged, CafeID: target.CafeID, Kind: kind, PhotoID: photo.ID})
	}

	m.logger.Info().
		Str("cafe_id", target.CafeID).
		Str("photo_id", photo.ID).
		Str("kind", string(kind)).
		Int("position", photo.Position).
		Bool("is_cover", photo.IsCover).
		Msg("Photo confirmed")

	return &photo, nil
}

// ListPhotos returns one kind ordered by position, or place then menu when kind is empty.
func (m *MediaUsecase) ListPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	kinds := []domain.PhotoKind{kind}
	if kind == "" {
		kinds = []domain.PhotoKind{domain.KindPlace, domain.KindMenu}
	}

	photos := []domain.PhotoRecord{}
	for _, k := range kinds {
		list, err := m.photos.ListPhotos(ctx, cafeID, k)
		if err != nil {
			return nil, fmt.Errorf("failed to list photos: %w", err)
		}
		photos = append(photos, list...)
	}

	return photos, nil
}

func (m *MediaUsecase) Reorder(ctx context.Context, cafeID string, kind domain.PhotoKind, photoIDs []string) ([]domain.PhotoRecord, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.photos.ListPhotos(ctx, cafeID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	if len(photoIDs) != len(current) {
		return nil, fmt.Errorf("%w: got %d ids for %d photos", ErrInvalidOrder, len(photoIDs), len(current))
	}

	byID := make(map[string]domain.PhotoRecord, len(current))
	for _, p := range current {
		byID[p.ID] = p
	}

	layout := make([]domain.PhotoRecord, 0, len(photoIDs))
	for _, id := range photoIDs {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown or repeated id %s", ErrInvalidOrder, id)
		}
		delete(byID, id)
		layout = append(layout, p)
	}
	repack(layout)

	if err := m.photos.UpdateLayout(ctx, cafeID, layout); err != nil {
		return nil, fmt.Errorf("failed to update layout: %w", err)
	}

	m.publish(ctx, domain.PhotoEvent{Type: domain.EventPhotosReordered, CafeID: cafeID, Kind: kind, PhotoIDs: photoIDs})
	m.logger.Info().Str("cafe_id", cafeID).Str("kind", string(kind)).Int("photos", len(layout)).Msg("Photos reordered")

	return layout, nil
}

// SetCover makes photoID the cafe's only cover and returns the place gallery.
func (m *MediaUsecase) SetCover(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, err := m.getPhoto(ctx, cafeID, photoID)
	if err != nil {
		return nil, err
	}
	if target.Kind != domain.KindPlace {
		return nil, ErrCoverNotSupported
	}

	layout, err := m.photos.ListPhotos(ctx, cafeID, domain.KindPlace)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	for i := range layout {
		layout[i].IsCover = layout[i].ID == photoID
	}

	if err := m.photos.UpdateLayout(ctx, cafeID, layout); err != nil {
		return nil, fmt.Errorf("failed to update layout: %w", err)
	}

	m.publish(ctx, domain.PhotoEvent{Type: domain.EventCoverChanged, CafeID: cafeID, Kind: domain.KindPlace, PhotoID: photoID})
	m.logger.Info().Str("cafe_id", cafeID).Str("photo_id", photoID).Msg("Cover changed")

	return layout, nil
}

// DeletePhoto removes the photo and returns what is left of its kind. When
// the cover goes, the first remaining place photo takes over.
func (m *MediaUsecase) DeletePhoto(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted, err := m.getPhoto(ctx, cafeID, photoID)
	if err != nil {
		return nil, err
	}

	if err := m.photos.DeletePhoto(ctx, cafeID, photoID); err != nil {
		if errors.Is(err, repoPhoto.ErrPhotoNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to delete photo: %w", err)
	}

	if err := m.files.Remove(ctx, deleted.ObjectKey); err != nil {
		m.logger.Error().Err(err).Str("photo_id", photoID).Msg("Failed to delete photo object")
	}

	layout, err := m.photos.ListPhotos(ctx, cafeID, deleted.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	repack(layout)

	promoted := ""
	if deleted.IsCover && deleted.Kind == domain.KindPlace && len(layout) > 0 {
		layout[0].IsCover = true
		promoted = layout[0].ID
	}

	if err := m.photos.UpdateLayout(ctx, cafeID, layout); err != nil {
		return nil, fmt.Errorf("failed to update layout: %w", err)
	}

	m.publish(ctx, domain.PhotoEvent{Type: domain.EventPhotoDeleted, CafeID: cafeID, Kind: deleted.Kind, PhotoID: photoID, ObjectKey: deleted.ObjectKey})
	if promoted != "" {
		m.publish(ctx, domain.PhotoEvent{Type: domain.EventCoverChanged, CafeID: cafeID, Kind: domain.KindPlace, PhotoID: promoted})
	}

	m.logger.Info().Str("cafe_id", cafeID).Str("photo_id", photoID).Str("promoted_cover", promoted).Msg("Photo deleted")
	return layout, nil
}

func (m *MediaUsecase) getPhoto(ctx context.Context, cafeID, photoID string) (*domain.PhotoRecord, error) {
	p, err := m.photos.GetPhoto(ctx, cafeID, photoID)
	if err != nil {
		if errors.Is(err, repoPhoto.ErrPhotoNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

func (m *MediaUsecase) publish(ctx context.Context, event domain.PhotoEvent) {
	event.ID = uuid.NewString()
	event.OccurredAt = m.now()

	if err := m.events.Publish(ctx, event); err != nil {
		m.logger.Error().Err(err).Str("type", string(event.Type)).Str("cafe_id", event.CafeID).Msg("Failed to publish photo event")
	}
}

func repack(layout []domain.PhotoRecord) {
	for i := range layout {
		layout[i].Position = i + 1
	}
}

func keyPrefix(target domain.UploadTarget) string {
	switch target.Scope {
	case domain.ScopeSubmission:
		return domain.PathPrefixSubmissions + target.CafeID + "/"
	case domain.ScopeAvatar:
		return domain.PathPrefixAvatars
	default:
		return domain.PathPrefixCafes + target.CafeID + "/" + string(target.Kind()) + "/"
	}
}

func objectKey(target domain.UploadTarget, ext string) string {
	return keyPrefix(target) + uuid.NewString() + ext
}

// ownsKey accepts only keys this server could have issued for target.
func ownsKey(target domain.UploadTarget, key string) bool {
	prefix := keyPrefix(target)
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	name := strings.TrimPrefix(key, prefix)
	return name != "" && !strings.Contains(name, "/") && !strings.Contains(key, "..")
}
