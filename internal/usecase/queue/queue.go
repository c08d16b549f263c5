// Package queue holds files picked for upload until they are uploaded or
// dropped. It owns each item's preview and revokes it exactly once.
package queue

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"cafe-media/internal/domain"
	"cafe-media/internal/usecase/processor/operations"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type previewStore interface {
	Create(file *domain.File, quarterTurns int) (domain.PreviewHandle, error)
	Revoke(handle domain.PreviewHandle) error
}

type Queue struct {
	previews previewStore
	maxSize  int64
	logger   *zlog.Zerolog

	mu     sync.Mutex
	items  []*domain.PendingUploadItem
	closed bool
}

func New(previews previewStore, maxSize int64, logger *zlog.Zerolog) *Queue {
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxUploadSize
	}
	return &Queue{
		previews: previews,
		maxSize:  maxSize,
		logger:   logger,
	}
}

// NewDefault wires a queue with temp-file previews rendered by the thumbnailer.
func NewDefault(dir string, previewSize int, maxSize int64, logger *zlog.Zerolog) *Queue {
	store := NewPreviewStore(dir, operations.NewThumbnailer(previewSize), logger)
	return New(store, maxSize, logger)
}

// Add admits file when its bytes sniff as an accepted image type. The
// declared content type is replaced by the sniffed one.
func (q *Queue) Add(file *domain.File) (domain.PendingUploadItem, error) {
	if file == nil || len(file.Data) == 0 {
		return domain.PendingUploadItem{}, fmt.Errorf("%w: empty file", domain.ErrUnsupportedMedia)
	}

	detected := mimetype.Detect(file.Data)
	contentType := domain.NormalizeContentType(detected.String())
	if !strings.HasPrefix(contentType, "image/") || !domain.IsAcceptedMediaType(contentType) {
		return domain.PendingUploadItem{}, &domain.FileError{
			File: file.Name,
			Err:  fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, contentType),
		}
	}
	if file.Size() > q.maxSize {
		return domain.PendingUploadItem{}, &domain.FileError{
			File: file.Name,
			Err:  fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrUnsupportedMedia, file.Size(), q.maxSize),
		}
	}

	admitted := &domain.File{Name: file.Name, ContentType: contentType, Data: file.Data}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return domain.PendingUploadItem{}, domain.ErrQueueClosed
	}

	preview, err := q.previews.Create(admitted, 0)
	if err != nil {
		return domain.PendingUploadItem{}, &domain.FileError{File: file.Name, Err: err}
	}

	item := &domain.PendingUploadItem{
		ID:      uuid.NewString(),
		File:    admitted,
		Preview: preview,
	}
	q.items = append(q.items, item)

	q.logger.Debug().Str("item_id", item.ID).Str("file", file.Name).Str("content_type", contentType).Msg("File queued")
	return *item, nil
}

// Rotate adds delta quarter turns to the item and redraws its preview.
func (q *Queue) Rotate(id string, delta int) (domain.PendingUploadItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, _, err := q.find(id)
	if err != nil {
		return domain.PendingUploadItem{}, err
	}

	turns := operations.NormalizeQuarterTurns(item.QuarterTurns + delta)
	if turns == item.QuarterTurns {
		return *item, nil
	}

	preview, err := q.previews.Create(item.File, turns)
	if err != nil {
		return domain.PendingUploadItem{}, &domain.FileError{File: item.File.Name, Err: err}
	}

	old := item.Preview
	item.Preview = preview
	item.QuarterTurns = turns

	if err := q.previews.Revoke(old); err != nil {
		q.logger.Warn().Err(err).Str("item_id", id).Msg("Failed to revoke replaced preview")
	}

	return *item, nil
}

func (q *Queue) Remove(id string) error {
	return q.drop(id, "File removed from queue")
}

// Complete drops an item after a successful upload.
func (q *Queue) Complete(id string) error {
	return q.drop(id, "Queued file uploaded")
}

func (q *Queue) drop(id, msg string) error {
	q.mu.Lock()
	item, i, err := q.find(id)
	if err != nil {
		q.mu.Unlock()
		return err
	}
	q.items = append(q.items[:i], q.items[i+1:]...)
	q.mu.Unlock()

	q.logger.Debug().Str("item_id", id).Str("file", item.File.Name).Msg(msg)
	return q.previews.Revoke(item.Preview)
}

// Items returns the queued items in the order they were added.
func (q *Queue) Items() []domain.PendingUploadItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.PendingUploadItem, len(q.items))
	for i, item := range q.items {
		out[i] = *item
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close revokes every remaining preview. Further calls are no-ops.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	items := q.items
	q.items = nil
	q.mu.Unlock()

	var errs []error
	for _, item := range items {
		if err := q.previews.Revoke(item.Preview); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (q *Queue) find(id string) (*domain.PendingUploadItem, int, error) {
	if q.closed {
		return nil, -1, domain.ErrQueueClosed
	}
	for i, item := range q.items {
		if item.ID == id {
			return item, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
}
