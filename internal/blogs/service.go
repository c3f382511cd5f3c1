// Package blogs coordinates blog post publishing and retrieval.
package blogs

import (
	"context"
	"strings"

	"github.com/lcharvet/fotoblog/internal/database"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
	"github.com/lcharvet/fotoblog/internal/tagging"
)

const maxTitleLength = 128

// ServiceError represents a blog service validation/runtime error.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ErrNotCreator is returned when a subscriber tries to publish.
var ErrNotCreator = &ServiceError{Message: "only creators can publish content"}

type blogStore interface {
	Create(ctx context.Context, authorID string, params models.CreateBlogParams) (*models.Blog, error)
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	Update(ctx context.Context, id, authorID string, params models.UpdateBlogParams) (*models.Blog, error)
	Delete(ctx context.Context, id, authorID string) error
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Blog, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Blog, error)
}

type photoReader interface {
	GetByID(ctx context.Context, id string) (*models.Photo, error)
}

type userReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type viewRecorder interface {
	MarkViewed(ctx context.Context, ref models.ContentRef, userID string) error
}

// CreateBlogRequest carries a blog publish request. PhotoID optionally
// links one of the author's photos as the illustration.
type CreateBlogRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	PhotoID string   `json:"photoId,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Service coordinates blog post business logic.
type Service struct {
	store  blogStore
	photos photoReader
	users  userReader
	views  viewRecorder
	tagger *tagging.Tagger
	logger *logging.Logger
}

// NewService creates a blog service.
func NewService(store *database.BlogStore, photos *database.PhotoStore, users *database.UserStore, views *database.EngagementStore, tagger *tagging.Tagger, logger *logging.Logger) *Service {
	return NewServiceWithDeps(store, photos, users, views, tagger, logger)
}

// NewServiceWithDeps is exposed for testing.
func NewServiceWithDeps(store blogStore, photos photoReader, users userReader, views viewRecorder, tagger *tagging.Tagger, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		photos: photos,
		users:  users,
		views:  views,
		tagger: tagger,
		logger: logger,
	}
}

// Create publishes a blog post. Only creators may publish. A linked photo
// must exist and belong to the author. Tags are inferred from the title and
// body when none are supplied.
func (s *Service) Create(ctx context.Context, authorID string, req CreateBlogRequest) (*models.Blog, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" {
		return nil, &ServiceError{Message: "title is required"}
	}
	if len(title) > maxTitleLength {
		return nil, &ServiceError{Message: "title is too long"}
	}
	if content == "" {
		return nil, &ServiceError{Message: "content is required"}
	}

	user, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &ServiceError{Message: "user not found"}
	}
	if !user.IsCreatorRole() {
		return nil, ErrNotCreator
	}

	photoID := strings.TrimSpace(req.PhotoID)
	if photoID != "" {
		photo, err := s.photos.GetByID(ctx, photoID)
		if err != nil {
			return nil, err
		}
		if photo == nil || photo.UploaderID != authorID {
			return nil, &ServiceError{Message: "linked photo not found"}
		}
	}

	tags := req.Tags
	if len(tags) == 0 && s.tagger != nil {
		tags = s.tagger.InferTags(title, content)
	}

	blog, err := s.store.Create(ctx, authorID, models.CreateBlogParams{
		Title:   title,
		Content: content,
		PhotoID: photoID,
		Tags:    tags,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Blog post published", logging.WithFields(map[string]interface{}{
		"blogId":   blog.ID,
		"authorId": authorID,
	}))

	return blog, nil
}

// Get fetches a blog post and records a view for authenticated viewers.
func (s *Service) Get(ctx context.Context, id, viewerID string) (*models.Blog, error) {
	blog, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, nil
	}

	if viewerID != "" {
		if err := s.views.MarkViewed(ctx, blog.ContentRef(), viewerID); err != nil {
			s.logger.Warn("Failed to record blog view", logging.WithField("error", err.Error()))
		}
	}

	return blog, nil
}

// Update edits a blog post owned by the author.
func (s *Service) Update(ctx context.Context, id, authorID string, params models.UpdateBlogParams) (*models.Blog, error) {
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, &ServiceError{Message: "title is required"}
		}
		if len(title) > maxTitleLength {
			return nil, &ServiceError{Message: "title is too long"}
		}
		params.Title = &title
	}
	if params.PhotoID != nil && *params.PhotoID != "" {
		photo, err := s.photos.GetByID(ctx, *params.PhotoID)
		if err != nil {
			return nil, err
		}
		if photo == nil || photo.UploaderID != authorID {
			return nil, &ServiceError{Message: "linked photo not found"}
		}
	}

	return s.store.Update(ctx, id, authorID, params)
}

// Delete removes a blog post owned by the author.
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	return s.store.Delete(ctx, id, authorID)
}

// ListByAuthor returns a user's blog posts, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Blog, error) {
	return s.store.ListByAuthor(ctx, authorID, limit)
}

// ListRecent returns the newest blog posts site-wide.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*models.Blog, error) {
	return s.store.ListRecent(ctx, limit)
}
