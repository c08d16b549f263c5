package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cafe-media/internal/config"
	"cafe-media/internal/domain"
	"cafe-media/internal/repository/photo"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type FileRepository struct {
	client    *minio.Client
	bucket    string
	publicURL string
	retries   retry.Strategy
	logger    *zlog.Zerolog
}

func NewMinIORepository(cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*FileRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.Minio.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.Minio.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Minio.Endpoint, cfg.Minio.Bucket)
	}

	repo := &FileRepository{
		client:    client,
		bucket:    cfg.Minio.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		retries:   retries,
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *FileRepository) ensureBucket(ctx context.Context) error {
	return retry.Do(func() error {
		exists, err := r.client.BucketExists(ctx, r.bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket: %w", err)
		}
		if exists {
			return nil
		}

		if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		r.logger.Info().Str("bucket", r.bucket).Msg("Bucket created")
		return nil
	}, r.retries)
}

// PresignPut returns a URL the client can PUT the object to without credentials.
func (r *FileRepository) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := r.client.PresignedPutObject(ctx, r.bucket, key, expiry)
	if err != nil {
		return "", fmt.Errorf("%w: presign %s: %w", photo.ErrStorageError, key, err)
	}
	return u.String(), nil
}

func (r *FileRepository) Stat(ctx context.Context, key string) (*domain.ObjectInfo, error) {
	info, err := r.client.StatObject(ctx, r.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, photo.ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: stat %s: %w", photo.ErrStorageError, key, err)
	}

	return &domain.ObjectInfo{
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

func (r *FileRepository) Remove(ctx context.Context, key string) error {
	err := retry.Do(func() error {
		return r.client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{})
	}, r.retries)
	if err != nil {
		return fmt.Errorf("%w: remove %s: %w", photo.ErrStorageError, key, err)
	}
	return nil
}

func (r *FileRepository) ObjectURL(key string) string {
	return r.publicURL + "/" + (&url.URL{Path: key}).EscapedPath()
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return true
	}
	return errors.Is(err, photo.ErrObjectNotFound)
}
