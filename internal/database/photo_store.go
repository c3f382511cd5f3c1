package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/lcharvet/fotoblog/internal/models"
)

// PhotoStore handles photo database operations
type PhotoStore struct {
	db *DB
}

// NewPhotoStore creates a new photo store
func NewPhotoStore(db *DB) *PhotoStore {
	return &PhotoStore{db: db}
}

// Create creates a new photo
func (s *PhotoStore) Create(ctx context.Context, uploaderID string, params models.CreatePhotoParams) (*models.Photo, error) {
	query := `
		INSERT INTO photos (uploader_id, caption, image_asset_id, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uploader_id, caption, image_asset_id, tags, like_count, created_at
	`

	return s.scanPhoto(s.db.QueryRowContext(ctx, query,
		uploaderID, params.Caption, params.ImageAssetID, pq.Array(params.Tags),
	))
}

// GetByID retrieves a photo by ID
func (s *PhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT id, uploader_id, caption, image_asset_id, tags, like_count, created_at
		FROM photos
		WHERE id = $1
	`

	return s.scanPhoto(s.db.QueryRowContext(ctx, query, id))
}

// Delete deletes a photo owned by the given user
func (s *PhotoStore) Delete(ctx context.Context, id, uploaderID string) error {
	query := `DELETE FROM photos WHERE id = $1 AND uploader_id = $2`
	result, err := s.db.ExecContext(ctx, query, id, uploaderID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("photo not found")
	}

	return nil
}

// RecentSince returns photos created at or after the cutoff, newest first
func (s *PhotoStore) RecentSince(ctx context.Context, cutoff time.Time, limit int) ([]*models.Photo, error) {
	query := `
		SELECT id, uploader_id, caption, image_asset_id, tags, like_count, created_at
		FROM photos
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return s.queryPhotos(ctx, query, cutoff, limit)
}

// TopLiked returns the most-liked photos
func (s *PhotoStore) TopLiked(ctx context.Context, limit int) ([]*models.Photo, error) {
	query := `
		SELECT id, uploader_id, caption, image_asset_id, tags, like_count, created_at
		FROM photos
		ORDER BY like_count DESC, created_at DESC
		LIMIT $1
	`

	return s.queryPhotos(ctx, query, limit)
}

// ListRecent returns photos newest first regardless of age
func (s *PhotoStore) ListRecent(ctx context.Context, limit int) ([]*models.Photo, error) {
	query := `
		SELECT id, uploader_id, caption, image_asset_id, tags, like_count, created_at
		FROM photos
		ORDER BY created_at DESC
		LIMIT $1
	`

	return s.queryPhotos(ctx, query, limit)
}

// ListByUploader returns a user's photos, newest first
func (s *PhotoStore) ListByUploader(ctx context.Context, uploaderID string, limit int) ([]*models.Photo, error) {
	query := `
		SELECT id, uploader_id, caption, image_asset_id, tags, like_count, created_at
		FROM photos
		WHERE uploader_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return s.queryPhotos(ctx, query, uploaderID, limit)
}

// CountByUploader returns the number of photos a user has uploaded
func (s *PhotoStore) CountByUploader(ctx context.Context, uploaderID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE uploader_id = $1`, uploaderID).Scan(&count)
	return count, err
}

func (s *PhotoStore) scanPhoto(row *sql.Row) (*models.Photo, error) {
	photo := &models.Photo{}
	var caption sql.NullString
	var tags pq.StringArray

	err := row.Scan(
		&photo.ID, &photo.UploaderID, &caption, &photo.ImageAssetID,
		&tags, &photo.LikeCount, &photo.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if caption.Valid {
		photo.Caption = caption.String
	}
	photo.Tags = tags

	return photo, nil
}

func (s *PhotoStore) queryPhotos(ctx context.Context, query string, args ...interface{}) ([]*models.Photo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo := &models.Photo{}
		var caption sql.NullString
		var tags pq.StringArray

		err := rows.Scan(
			&photo.ID, &photo.UploaderID, &caption, &photo.ImageAssetID,
			&tags, &photo.LikeCount, &photo.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if caption.Valid {
			photo.Caption = caption.String
		}
		photo.Tags = tags
		photos = append(photos, photo)
	}

	return photos, rows.Err()
}
