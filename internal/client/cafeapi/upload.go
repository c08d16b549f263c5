package cafeapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cafe-media/internal/domain"
)

func uploadBasePath(target domain.UploadTarget) string {
	switch target.Scope {
	case domain.ScopeSubmission:
		return cafePath(target.CafeID, "submissions", "photos")
	case domain.ScopeAvatar:
		return "/me/avatar"
	default:
		return cafePath(target.CafeID, "photos")
	}
}

// Presign asks the backend for a fresh upload credential. The object key is
// whatever the backend says; the client never builds one.
func (c *Client) Presign(ctx context.Context, target domain.UploadTarget, contentType string, sizeBytes int64) (*domain.PresignedUpload, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPresign, err)
	}

	req := presignRequest{
		Kind:        target.Kind(),
		ContentType: contentType,
		SizeBytes:   sizeBytes,
	}

	var resp presignResponse
	if err := c.do(ctx, http.MethodPost, uploadBasePath(target)+"/presign", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPresign, err)
	}

	if err := c.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: invalid presign response: %w", domain.ErrPresign, err)
	}

	method := strings.ToUpper(resp.Method)
	if method == "" {
		method = http.MethodPut
	}

	return &domain.PresignedUpload{
		UploadURL: resp.UploadURL,
		Method:    method,
		Headers:   resp.Headers,
		ObjectKey: resp.ObjectKey,
		FileURL:   resp.FileURL,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// Confirm binds an uploaded object to the target. Gallery targets return a
// PhotoRecord, submissions a SubmissionRecord and avatars an AvatarRecord.
func (c *Client) Confirm(ctx context.Context, target domain.UploadTarget, objectKey string, meta domain.ConfirmMetadata) (*domain.ConfirmResult, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfirm, err)
	}

	req := confirmRequest{ObjectKey: objectKey}
	if target.Gallery() {
		kind := meta.Kind
		if kind == "" {
			kind = target.Kind()
		}
		req.Kind = kind
		isCover := meta.IsCover && kind == domain.KindPlace
		req.IsCover = &isCover
		if meta.Position > 0 {
			position := meta.Position
			req.Position = &position
		}
	}

	path := uploadBasePath(target) + "/confirm"
	result := &domain.ConfirmResult{}

	var err error
	switch target.Scope {
	case domain.ScopeSubmission:
		result.Submission = &domain.SubmissionRecord{}
		err = c.do(ctx, http.MethodPost, path, nil, req, result.Submission)
	case domain.ScopeAvatar:
		result.Avatar = &domain.AvatarRecord{}
		err = c.do(ctx, http.MethodPost, path, nil, req, result.Avatar)
	default:
		result.Photo = &domain.PhotoRecord{}
		err = c.do(ctx, http.MethodPost, path, nil, req, result.Photo)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfirm, err)
	}

	if result.Photo != nil && result.Photo.ID == "" {
		return nil, fmt.Errorf("%w: backend returned a photo without id", domain.ErrConfirm)
	}

	return result, nil
}
