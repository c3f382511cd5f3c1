package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/lcharvet/fotoblog/internal/models"
)

// EngagementStore handles likes and view tracking for photos and blog posts
type EngagementStore struct {
	db *DB
}

// NewEngagementStore creates a new engagement store
func NewEngagementStore(db *DB) *EngagementStore {
	return &EngagementStore{db: db}
}

func likeTables(kind models.ContentKind) (likeTable, contentTable string, err error) {
	switch kind {
	case models.KindPhoto:
		return "photo_likes", "photos", nil
	case models.KindBlog:
		return "blog_likes", "blogs", nil
	default:
		return "", "", fmt.Errorf("unknown content kind: %s", kind)
	}
}

func viewTable(kind models.ContentKind) (string, error) {
	switch kind {
	case models.KindPhoto:
		return "photo_views", nil
	case models.KindBlog:
		return "blog_views", nil
	default:
		return "", fmt.Errorf("unknown content kind: %s", kind)
	}
}

// ToggleLike adds or removes a like and returns the new state and like count
func (s *EngagementStore) ToggleLike(ctx context.Context, ref models.ContentRef, userID string) (liked bool, likeCount int, err error) {
	likeTable, contentTable, err := likeTables(ref.Kind)
	if err != nil {
		return false, 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE content_id = $1 AND user_id = $2`, likeTable)
	result, err := tx.ExecContext(ctx, deleteQuery, ref.ID, userID)
	if err != nil {
		return false, 0, err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	if removed > 0 {
		liked = false
		updateQuery := fmt.Sprintf(`
			UPDATE %s SET like_count = GREATEST(like_count - 1, 0)
			WHERE id = $1
			RETURNING like_count
		`, contentTable)
		if err := tx.QueryRowContext(ctx, updateQuery, ref.ID).Scan(&likeCount); err != nil {
			return false, 0, err
		}
	} else {
		liked = true
		insertQuery := fmt.Sprintf(`INSERT INTO %s (content_id, user_id) VALUES ($1, $2)`, likeTable)
		if _, err := tx.ExecContext(ctx, insertQuery, ref.ID, userID); err != nil {
			return false, 0, err
		}
		updateQuery := fmt.Sprintf(`
			UPDATE %s SET like_count = like_count + 1
			WHERE id = $1
			RETURNING like_count
		`, contentTable)
		if err := tx.QueryRowContext(ctx, updateQuery, ref.ID).Scan(&likeCount); err != nil {
			return false, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}

	return liked, likeCount, nil
}

// LikedIDs returns the ids of the given kind the user has liked
func (s *EngagementStore) LikedIDs(ctx context.Context, kind models.ContentKind, userID string) (map[string]struct{}, error) {
	likeTable, _, err := likeTables(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT content_id FROM %s WHERE user_id = $1`, likeTable)
	return s.queryIDSet(ctx, query, userID)
}

// MarkViewed records that a user has seen a piece of content
func (s *EngagementStore) MarkViewed(ctx context.Context, ref models.ContentRef, userID string) error {
	table, err := viewTable(ref.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (content_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (content_id, user_id) DO NOTHING
	`, table)
	_, err = s.db.ExecContext(ctx, query, ref.ID, userID)
	return err
}

// ViewedIDs returns the ids of the given kind the user has already seen
func (s *EngagementStore) ViewedIDs(ctx context.Context, kind models.ContentKind, userID string) (map[string]struct{}, error) {
	table, err := viewTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT content_id FROM %s WHERE user_id = $1`, table)
	return s.queryIDSet(ctx, query, userID)
}

func (s *EngagementStore) queryIDSet(ctx context.Context, query string, args ...interface{}) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}

	return ids, rows.Err()
}

// OwnerLikesReceived returns total likes received per owner across photos and blogs
func (s *EngagementStore) OwnerLikesReceived(ctx context.Context, ownerIDs []string) (map[string]int, error) {
	if len(ownerIDs) == 0 {
		return map[string]int{}, nil
	}

	query := `
		SELECT owner_id, SUM(likes) FROM (
			SELECT uploader_id AS owner_id, COALESCE(SUM(like_count), 0) AS likes
			FROM photos WHERE uploader_id = ANY($1) GROUP BY uploader_id
			UNION ALL
			SELECT author_id AS owner_id, COALESCE(SUM(like_count), 0) AS likes
			FROM blogs WHERE author_id = ANY($1) GROUP BY author_id
		) combined
		GROUP BY owner_id
	`

	return s.queryOwnerCounts(ctx, query, pq.Array(ownerIDs))
}

// OwnerPhotoCounts returns photo counts per owner
func (s *EngagementStore) OwnerPhotoCounts(ctx context.Context, ownerIDs []string) (map[string]int, error) {
	if len(ownerIDs) == 0 {
		return map[string]int{}, nil
	}

	query := `
		SELECT uploader_id, COUNT(*)
		FROM photos
		WHERE uploader_id = ANY($1)
		GROUP BY uploader_id
	`

	return s.queryOwnerCounts(ctx, query, pq.Array(ownerIDs))
}

// OwnerBlogCounts returns blog post counts per owner
func (s *EngagementStore) OwnerBlogCounts(ctx context.Context, ownerIDs []string) (map[string]int, error) {
	if len(ownerIDs) == 0 {
		return map[string]int{}, nil
	}

	query := `
		SELECT author_id, COUNT(*)
		FROM blogs
		WHERE author_id = ANY($1)
		GROUP BY author_id
	`

	return s.queryOwnerCounts(ctx, query, pq.Array(ownerIDs))
}

// OwnerRecentContentCounts returns per-owner counts of content created at or after the cutoff
func (s *EngagementStore) OwnerRecentContentCounts(ctx context.Context, ownerIDs []string, cutoff time.Time) (map[string]int, error) {
	if len(ownerIDs) == 0 {
		return map[string]int{}, nil
	}

	query := `
		SELECT owner_id, SUM(n) FROM (
			SELECT uploader_id AS owner_id, COUNT(*) AS n
			FROM photos WHERE uploader_id = ANY($1) AND created_at >= $2 GROUP BY uploader_id
			UNION ALL
			SELECT author_id AS owner_id, COUNT(*) AS n
			FROM blogs WHERE author_id = ANY($1) AND created_at >= $2 GROUP BY author_id
		) combined
		GROUP BY owner_id
	`

	return s.queryOwnerCounts(ctx, query, pq.Array(ownerIDs), cutoff)
}

func (s *EngagementStore) queryOwnerCounts(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var ownerID string
		var count int
		if err := rows.Scan(&ownerID, &count); err != nil {
			return nil, err
		}
		counts[ownerID] = count
	}

	return counts, rows.Err()
}
