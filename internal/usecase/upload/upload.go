// Package upload turns a queue of picked files into confirmed photos.
package upload

import (
	"context"
	"errors"
	"fmt"

	"cafe-media/internal/batch"
	"cafe-media/internal/domain"
	"cafe-media/internal/usecase/gallery"
	"cafe-media/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type Service struct {
	rotator     rotator
	api         uploadAPI
	uploader    objectUploader
	gallery     photoGallery
	logger      *zlog.Zerolog
	concurrency int
	retries     retry.Strategy
}

func NewService(
	rotator rotator,
	api uploadAPI,
	uploader objectUploader,
	gallery photoGallery,
	logger *zlog.Zerolog,
	concurrency int,
	retries retry.Strategy,
) *Service {
	if concurrency < 1 {
		concurrency = domain.DefaultConcurrency
	}
	if retries.Attempts < 1 {
		retries.Attempts = 1
	}
	return &Service{
		rotator:     rotator,
		api:         api,
		uploader:    uploader,
		gallery:     gallery,
		logger:      logger,
		concurrency: concurrency,
		retries:     retries,
	}
}

// galleryPlan is what the batch knows about the gallery before it starts.
// Positions are only sent when the current count is known.
type galleryPlan struct {
	known    bool
	existing int
	cover    bool
}

func (p galleryPlan) metadata(kind domain.PhotoKind, index int) domain.ConfirmMetadata {
	meta := domain.ConfirmMetadata{Kind: kind}
	if !p.known {
		return meta
	}
	meta.Position = p.existing + index + 1
	meta.IsCover = p.cover && index == 0
	return meta
}

// Upload sends every queued item to target with bounded parallelism. It runs
// to completion even if ctx is cancelled once started, so no upload is left
// half-confirmed. The result is non-nil whenever the target is valid, and err
// joins the per-item failures.
func (s *Service) Upload(ctx context.Context, target domain.UploadTarget, queue pendingQueue) (*domain.BatchResult, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	items := queue.Items()
	result := &domain.BatchResult{Items: make([]domain.ItemOutcome, len(items))}

	if len(items) == 0 {
		return result, nil
	}

	kind := target.Kind()
	plan := s.plan(ctx, target)

	s.logger.Info().
		Str("scope", string(target.Scope)).
		Str("cafe_id", target.CafeID).
		Int("items", len(items)).
		Int("existing", plan.existing).
		Msg("Starting upload batch")

	report := batch.Run(ctx, s.concurrency, items, func(ctx context.Context, item domain.PendingUploadItem, index int) error {
		outcome, err := s.uploadOne(ctx, target, item, plan.metadata(kind, index))
		outcome.ItemID = item.ID
		outcome.FileName = item.File.Name
		outcome.Index = index
		outcome.Err = err
		result.Items[index] = outcome
		return err
	})

	// the runner may have recovered a panic that never reached the outcome
	for i, err := range report.Errors {
		if err != nil && result.Items[i].Err == nil {
			result.Items[i] = domain.ItemOutcome{ItemID: items[i].ID, FileName: items[i].File.Name, Index: i, Err: err}
		}
	}

	for _, outcome := range result.Items {
		if !outcome.Succeeded() {
			s.logger.Warn().Err(outcome.Err).Str("file", outcome.FileName).Int("index", outcome.Index).Msg("Upload item failed")
			continue
		}
		if err := queue.Complete(outcome.ItemID); err != nil && !errors.Is(err, domain.ErrItemNotFound) {
			s.logger.Warn().Err(err).Str("item_id", outcome.ItemID).Msg("Failed to release queued item")
		}
	}

	if target.Gallery() {
		s.gallery.Invalidate(target.CafeID, kind)
		photos, err := s.gallery.List(ctx, target.CafeID, kind, gallery.WithForce())
		if err != nil {
			s.logger.Warn().Err(err).Str("cafe_id", target.CafeID).Msg("Failed to refresh photos after upload")
		} else {
			result.Photos = photos
		}
	}

	s.logger.Info().
		Str("scope", string(target.Scope)).
		Str("cafe_id", target.CafeID).
		Int("succeeded", result.Succeeded()).
		Int("failed", result.Failed()).
		Msg("Upload batch finished")

	return result, report.Err()
}

func (s *Service) plan(ctx context.Context, target domain.UploadTarget) galleryPlan {
	if !target.Gallery() {
		return galleryPlan{}
	}

	photos, err := s.gallery.List(ctx, target.CafeID, target.Kind())
	if err != nil {
		s.logger.Warn().Err(err).Str("cafe_id", target.CafeID).Msg("Could not load gallery before upload, positions left to the server")
		return galleryPlan{}
	}

	return galleryPlan{
		known:    true,
		existing: len(photos),
		cover:    target.Kind() == domain.KindPlace && len(photos) == 0,
	}
}

func (s *Service) uploadOne(ctx context.Context, target domain.UploadTarget, item domain.PendingUploadItem, meta domain.ConfirmMetadata) (domain.ItemOutcome, error) {
	var outcome domain.ItemOutcome

	file, err := s.rotator.Rotate(item.File, item.QuarterTurns)
	if err != nil {
		return outcome, err
	}

	confirmed, err := s.sendWithRetry(ctx, target, file, meta)
	if err != nil {
		return outcome, &domain.FileError{File: file.Name, Err: err}
	}

	outcome.Photo = confirmed.Photo
	outcome.Submission = confirmed.Submission
	outcome.Avatar = confirmed.Avatar

	if target.Gallery() {
		s.gallery.Invalidate(target.CafeID, target.Kind())
	}

	return outcome, nil
}

// sendWithRetry makes up to s.retries.Attempts attempts. retry.Do waits
// after every failed attempt, the last one included, so only the leading
// attempts go through it and the final one runs without a trailing delay.
func (s *Service) sendWithRetry(ctx context.Context, target domain.UploadTarget, file *domain.File, meta domain.ConfirmMetadata) (*domain.ConfirmResult, error) {
	if s.retries.Attempts > 1 {
		leading := s.retries
		leading.Attempts--

		var confirmed *domain.ConfirmResult
		err := retry.Do(func() error {
			var err error
			confirmed, err = s.send(ctx, target, file, meta)
			return err
		}, leading)
		if err == nil {
			return confirmed, nil
		}
		s.logger.Debug().Err(err).Str("file", file.Name).Msg("Upload attempts failed, making the last one")
	}

	return s.send(ctx, target, file, meta)
}

// send is one attempt. Each attempt asks for a new presign.
func (s *Service) send(ctx context.Context, target domain.UploadTarget, file *domain.File, meta domain.ConfirmMetadata) (*domain.ConfirmResult, error) {
	presigned, err := s.api.Presign(ctx, target, operations.ContentTypeOf(file), file.Size())
	if err != nil {
		return nil, err
	}

	if err := s.uploader.Put(ctx, presigned, file); err != nil {
		return nil, err
	}

	confirmed, err := s.api.Confirm(ctx, target, presigned.ObjectKey, meta)
	if err != nil {
		return nil, err
	}
	if confirmed == nil {
		return nil, fmt.Errorf("%w: empty response", domain.ErrConfirm)
	}

	return confirmed, nil
}
