// Package objectstore moves file bytes to a presigned object storage URL.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cafe-media/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

type Uploader struct {
	httpClient *http.Client
	logger     *zlog.Zerolog
	now        func() time.Time
}

func NewUploader(httpClient *http.Client, logger *zlog.Zerolog) *Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Uploader{
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Put sends the file once. It never retries: a failed transfer needs a new presign.
func (u *Uploader) Put(ctx context.Context, upload *domain.PresignedUpload, file *domain.File) error {
	if upload.Expired(u.now()) {
		return fmt.Errorf("%w: %w", domain.ErrUploadTransport, domain.ErrPresignExpired)
	}

	method := upload.Method
	if method == "" {
		method = http.MethodPut
	}

	req, err := http.NewRequestWithContext(ctx, method, upload.UploadURL, bytes.NewReader(file.Data))
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %w", domain.ErrUploadTransport, stripURL(err))
	}
	req.ContentLength = file.Size()

	for name, value := range upload.Headers {
		req.Header.Set(name, value)
	}
	if req.Header.Get("Content-Type") == "" && file.ContentType != "" {
		req.Header.Set("Content-Type", file.ContentType)
	}

	start := u.now()
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUploadTransport, stripURL(err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: object store responded %d", domain.ErrUploadTransport, resp.StatusCode)
	}

	u.logger.Debug().
		Str("file", file.Name).
		Int64("size", file.Size()).
		Dur("duration", u.now().Sub(start)).
		Msg("Object uploaded")

	return nil
}

// stripURL drops the request URL from transport errors; presigned URLs carry credentials.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return errors.New("invalid upload url")
}
