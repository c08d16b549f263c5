package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe-media/internal/domain"
	"cafe-media/internal/repository/photo"

	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const uniqueViolation = "23505"

type PhotosRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewPhotosRepository(db *dbpg.DB, retries retry.Strategy) *PhotosRepository {
	return &PhotosRepository{
		db:      db,
		retries: retries,
	}
}

func (r *PhotosRepository) ListPhotos(ctx context.Context, cafeID string, kind domain.PhotoKind) ([]domain.PhotoRecord, error) {
	query := `
		SELECT id, cafe_id, url, object_key, kind, is_cover, position, created_at
		FROM cafe_photos
		WHERE cafe_id = $1 AND kind = $2
		ORDER BY position ASC, created_at ASC
	`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, cafeID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := []domain.PhotoRecord{}
	for rows.Next() {
		var p domain.PhotoRecord
		err := rows.Scan(
			&p.ID,
			&p.CafeID,
			&p.URL,
			&p.ObjectKey,
			&p.Kind,
			&p.IsCover,
			&p.Position,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

func (r *PhotosRepository) GetPhoto(ctx context.Context, cafeID, photoID string) (*domain.PhotoRecord, error) {
	query := `
		SELECT id, cafe_id, url, object_key, kind, is_cover, position, created_at
		FROM cafe_photos
		WHERE id = $1 AND cafe_id = $2
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, photoID, cafeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query photo: %w", err)
	}

	var p domain.PhotoRecord
	err = row.Scan(
		&p.ID,
		&p.CafeID,
		&p.URL,
		&p.ObjectKey,
		&p.Kind,
		&p.IsCover,
		&p.Position,
		&p.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, photo.ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan photo: %w", err)
	}

	return &p, nil
}

// InsertPhoto inserts p and writes the layout of its siblings in one transaction.
func (r *PhotosRepository) InsertPhoto(ctx context.Context, p *domain.PhotoRecord, layout []domain.PhotoRecord) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin photo insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO cafe_photos (
			id, cafe_id, url, object_key, kind, is_cover, position, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, query,
		p.ID,
		p.CafeID,
		p.URL,
		p.ObjectKey,
		p.Kind,
		p.IsCover,
		p.Position,
		p.CreatedAt,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to save photo: %w", err))
	}

	if err := updateLayout(ctx, tx, p.CafeID, layout, p.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit photo insert: %w", err)
	}

	return nil
}

// UpdateLayout writes positions and cover flags for the given photos in one transaction.
func (r *PhotosRepository) UpdateLayout(ctx context.Context, cafeID string, photos []domain.PhotoRecord) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin layout update: %w", err)
	}
	defer tx.Rollback()

	if err := updateLayout(ctx, tx, cafeID, photos, ""); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit layout update: %w", err)
	}

	return nil
}

// updateLayout skips the photo with ID skip.
func updateLayout(ctx context.Context, tx *sql.Tx, cafeID string, photos []domain.PhotoRecord, skip string) error {
	query := `UPDATE cafe_photos SET position = $1, is_cover = $2, updated_at = $3 WHERE id = $4 AND cafe_id = $5`
	now := time.Now()

	for _, p := range photos {
		if p.ID == skip {
			continue
		}

		result, err := tx.ExecContext(ctx, query, p.Position, p.IsCover, now, p.ID, cafeID)
		if err != nil {
			return fmt.Errorf("failed to update photo %s: %w", p.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if affected == 0 {
			return photo.ErrPhotoNotFound
		}
	}

	return nil
}

func (r *PhotosRepository) DeletePhoto(ctx context.Context, cafeID, photoID string) error {
	query := `DELETE FROM cafe_photos WHERE id = $1 AND cafe_id = $2`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, photoID, cafeID)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return photo.ErrPhotoNotFound
	}

	return nil
}

func (r *PhotosRepository) SaveSubmission(ctx context.Context, s *domain.SubmissionRecord) error {
	query := `
		INSERT INTO photo_submissions (id, cafe_id, url, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		s.ID,
		s.CafeID,
		s.URL,
		s.Status,
		s.CreatedAt,
	)

	if err != nil {
		return classify(fmt.Errorf("failed to save submission: %w", err))
	}

	return nil
}

func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %w", photo.ErrDuplicateKey, err)
	}
	return err
}
