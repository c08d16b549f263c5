package queue

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cafe-media/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

type thumbnailer interface {
	Preview(file *domain.File, quarterTurns int) ([]byte, error)
}

// PreviewStore backs preview handles with temp files. A file is only ever
// removed through Revoke.
type PreviewStore struct {
	dir    string
	thumbs thumbnailer
	logger *zlog.Zerolog
}

// NewPreviewStore keeps previews under dir, or the OS temp dir when dir is empty.
func NewPreviewStore(dir string, thumbs thumbnailer, logger *zlog.Zerolog) *PreviewStore {
	return &PreviewStore{
		dir:    dir,
		thumbs: thumbs,
		logger: logger,
	}
}

func (s *PreviewStore) Create(file *domain.File, quarterTurns int) (domain.PreviewHandle, error) {
	data, ext := s.render(file, quarterTurns)

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return domain.PreviewHandle{}, fmt.Errorf("failed to create preview dir: %w", err)
		}
	}

	f, err := os.CreateTemp(s.dir, "preview-*"+ext)
	if err != nil {
		return domain.PreviewHandle{}, fmt.Errorf("failed to create preview: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return domain.PreviewHandle{}, fmt.Errorf("failed to write preview: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return domain.PreviewHandle{}, fmt.Errorf("failed to close preview: %w", err)
	}

	path, err := filepath.Abs(f.Name())
	if err != nil {
		path = f.Name()
	}

	return domain.PreviewHandle{
		URI:  "file://" + filepath.ToSlash(path),
		Path: path,
	}, nil
}

// render falls back to the original bytes for formats we cannot decode, such as AVIF.
func (s *PreviewStore) render(file *domain.File, quarterTurns int) ([]byte, string) {
	data, err := s.thumbs.Preview(file, quarterTurns)
	if err == nil {
		return data, domain.FormatJPEG.Extension()
	}

	s.logger.Debug().Err(err).Str("file", file.Name).Msg("Thumbnail unavailable, keeping original bytes")
	return file.Data, domain.FormatFromContentType(file.ContentType).Extension()
}

func (s *PreviewStore) Revoke(handle domain.PreviewHandle) error {
	if handle.Path == "" {
		return nil
	}
	if err := os.Remove(handle.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to revoke preview: %w", err)
	}
	return nil
}
