package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/lcharvet/fotoblog/internal/models"
)

// BlogStore handles blog post database operations
type BlogStore struct {
	db *DB
}

// NewBlogStore creates a new blog store
func NewBlogStore(db *DB) *BlogStore {
	return &BlogStore{db: db}
}

// Create creates a new blog post
func (s *BlogStore) Create(ctx context.Context, authorID string, params models.CreateBlogParams) (*models.Blog, error) {
	query := `
		INSERT INTO blogs (author_id, title, content, photo_id, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, author_id, title, content, photo_id, tags, starred, like_count, created_at
	`

	return s.scanBlog(s.db.QueryRowContext(ctx, query,
		authorID, params.Title, params.Content, nullString(params.PhotoID), pq.Array(params.Tags),
	))
}

// GetByID retrieves a blog post by ID
func (s *BlogStore) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	query := `
		SELECT id, author_id, title, content, photo_id, tags, starred, like_count, created_at
		FROM blogs
		WHERE id = $1
	`

	return s.scanBlog(s.db.QueryRowContext(ctx, query, id))
}

// Update updates a blog post owned by the given user
func (s *BlogStore) Update(ctx context.Context, id, authorID string, params models.UpdateBlogParams) (*models.Blog, error) {
	var sets []string
	var args []interface{}
	argIdx := 1

	if params.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *params.Title)
		argIdx++
	}
	if params.Content != nil {
		sets = append(sets, fmt.Sprintf("content = $%d", argIdx))
		args = append(args, *params.Content)
		argIdx++
	}
	if params.PhotoID != nil {
		sets = append(sets, fmt.Sprintf("photo_id = $%d", argIdx))
		args = append(args, nullString(*params.PhotoID))
		argIdx++
	}
	if params.Tags != nil {
		sets = append(sets, fmt.Sprintf("tags = $%d", argIdx))
		args = append(args, pq.Array(*params.Tags))
		argIdx++
	}
	if params.Starred != nil {
		sets = append(sets, fmt.Sprintf("starred = $%d", argIdx))
		args = append(args, *params.Starred)
		argIdx++
	}

	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	args = append(args, id, authorID)

	query := fmt.Sprintf(`
		UPDATE blogs SET %s
		WHERE id = $%d AND author_id = $%d
		RETURNING id, author_id, title, content, photo_id, tags, starred, like_count, created_at
	`, strings.Join(sets, ", "), argIdx, argIdx+1)

	blog, err := s.scanBlog(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, fmt.Errorf("blog post not found")
	}

	return blog, nil
}

// Delete deletes a blog post owned by the given user
func (s *BlogStore) Delete(ctx context.Context, id, authorID string) error {
	query := `DELETE FROM blogs WHERE id = $1 AND author_id = $2`
	result, err := s.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("blog post not found")
	}

	return nil
}

// RecentSince returns blog posts created at or after the cutoff, newest first
func (s *BlogStore) RecentSince(ctx context.Context, cutoff time.Time, limit int) ([]*models.Blog, error) {
	query := `
		SELECT id, author_id, title, content, photo_id, tags, starred, like_count, created_at
		FROM blogs
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return s.queryBlogs(ctx, query, cutoff, limit)
}

// TopLiked returns the most-liked blog posts
func (s *BlogStore) TopLiked(ctx context.Context, limit int) ([]*models.Blog, error) {
	query := `
		SELECT id, author_id, title, content, photo_id, tags, starred, like_count, created_at
		FROM blogs
		ORDER BY like_count DESC, created_at DESC
		LIMIT $1
	`

	return s.queryBlogs(ctx, query, limit)
}

// ListRecent returns blog posts newest first regardless of age
func (s *BlogStore) ListRecent(ctx context.Context, limit int) ([]*models.Blog, error) {
	query := `
		SELECT id, author_id, title, content, photo_id, tags, starred, like_count, created_at
		FROM blogs
		ORDER BY created_at DESC
		LIMIT $1
	`

	return s.queryBlogs(ctx, query, limit)
}

// ListByAuthor returns a user's blog posts, newest first
func (s *BlogStore) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Blog, error) {
	query := `
		SELECT id, author_id, title, content, photo_id, tags, starred, like_count, created_at
		FROM blogs
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return s.queryBlogs(ctx, query, authorID, limit)
}

// CountByAuthor returns the number of blog posts a user has written
func (s *BlogStore) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs WHERE author_id = $1`, authorID).Scan(&count)
	return count, err
}

func (s *BlogStore) scanBlog(row *sql.Row) (*models.Blog, error) {
	blog := &models.Blog{}
	var photoID sql.NullString
	var tags pq.StringArray

	err := row.Scan(
		&blog.ID, &blog.AuthorID, &blog.Title, &blog.Content, &photoID,
		&tags, &blog.Starred, &blog.LikeCount, &blog.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if photoID.Valid {
		blog.PhotoID = photoID.String
	}
	blog.Tags = tags

	return blog, nil
}

func (s *BlogStore) queryBlogs(ctx context.Context, query string, args ...interface{}) ([]*models.Blog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []*models.Blog
	for rows.Next() {
		blog := &models.Blog{}
		var photoID sql.NullString
		var tags pq.StringArray

		err := rows.Scan(
			&blog.ID, &blog.AuthorID, &blog.Title, &blog.Content, &photoID,
			&tags, &blog.Starred, &blog.LikeCount, &blog.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if photoID.Valid {
			blog.PhotoID = photoID.String
		}
		blog.Tags = tags
		blogs = append(blogs, blog)
	}

	return blogs, rows.Err()
}
