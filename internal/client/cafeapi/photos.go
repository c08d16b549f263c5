package cafeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"cafe-media/internal/domain"
)

func (c *Client) ListPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error) {
	query := url.Values{}
	if kind != "" {
		query.Set("kind", string(kind))
	}

	var resp photosResponse
	if err := c.do(ctx, http.MethodGet, cafePath(cafeID, "photos"), query, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrListFetch, err)
	}

	return domain.ClonePhotos(resp.Photos), nil
}

func (c *Client) ReorderPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind, photoIDs []string) ([]domain.PhotoRecord, error) {
	query := url.Values{}
	query.Set("kind", string(kind))

	var resp photosResponse
	req := reorderRequest{PhotoIDs: photoIDs}
	if err := c.do(ctx, http.MethodPatch, cafePath(cafeID, "photos", "order"), query, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: reorder: %w", domain.ErrMutation, err)
	}

	return domain.ClonePhotos(resp.Photos), nil
}

func (c *Client) SetCover(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error) {
	var resp photosResponse
	path := cafePath(cafeID, "photos", url.PathEscape(photoID), "cover")
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: set cover: %w", domain.ErrMutation, err)
	}

	return domain.ClonePhotos(resp.Photos), nil
}

func (c *Client) DeletePhoto(ctx context.Context, cafeID, photoID string) ([]domain.PhotoRecord, error) {
	var resp photosResponse
	path := cafePath(cafeID, "photos", url.PathEscape(photoID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: delete: %w", domain.ErrMutation, err)
	}

	return domain.ClonePhotos(resp.Photos), nil
}
