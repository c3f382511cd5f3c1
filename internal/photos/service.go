// Package photos coordinates photo publishing and retrieval.
package photos

import (
	"context"
	"strings"

	"github.com/lcharvet/fotoblog/internal/database"
	"github.com/lcharvet/fotoblog/internal/images"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
	"github.com/lcharvet/fotoblog/internal/tagging"
)

const maxCaptionLength = 128

// ServiceError represents a photo service validation/runtime error.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ErrNotCreator is returned when a subscriber tries to publish.
var ErrNotCreator = &ServiceError{Message: "only creators can publish content"}

type photoStore interface {
	Create(ctx context.Context, uploaderID string, params models.CreatePhotoParams) (*models.Photo, error)
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	Delete(ctx context.Context, id, uploaderID string) error
	ListByUploader(ctx context.Context, uploaderID string, limit int) ([]*models.Photo, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Photo, error)
}

type userReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type imagePipeline interface {
	PersistApprovedUpload(ctx context.Context, ownerUserID, uploadID string, entityType models.ImageEntityType, entityID string) (*models.ImageAsset, error)
	Delete(ctx context.Context, imageID string) error
}

type viewRecorder interface {
	MarkViewed(ctx context.Context, ref models.ContentRef, userID string) error
}

// CreatePhotoRequest carries a publish request: an approved upload token
// plus caption and optional explicit tags.
type CreatePhotoRequest struct {
	UploadID string   `json:"uploadId"`
	Caption  string   `json:"caption"`
	Tags     []string `json:"tags,omitempty"`
}

// Service coordinates photo business logic.
type Service struct {
	store    photoStore
	users    userReader
	imageSvc imagePipeline
	views    viewRecorder
	tagger   *tagging.Tagger
	logger   *logging.Logger
}

// NewService creates a photo service.
func NewService(store *database.PhotoStore, users *database.UserStore, imageSvc *images.Service, views *database.EngagementStore, tagger *tagging.Tagger, logger *logging.Logger) *Service {
	return NewServiceWithDeps(store, users, imageSvc, views, tagger, logger)
}

// NewServiceWithDeps is exposed for testing.
func NewServiceWithDeps(store photoStore, users userReader, imageSvc imagePipeline, views viewRecorder, tagger *tagging.Tagger, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		users:    users,
		imageSvc: imageSvc,
		views:    views,
		tagger:   tagger,
		logger:   logger,
	}
}

// Create publishes a photo from an approved upload. Only creators may
// publish. Tags are inferred from the caption when none are supplied.
func (s *Service) Create(ctx context.Context, uploaderID string, req CreatePhotoRequest) (*models.Photo, error) {
	caption := strings.TrimSpace(req.Caption)
	if len(caption) > maxCaptionLength {
		return nil, &ServiceError{Message: "caption is too long"}
	}
	if strings.TrimSpace(req.UploadID) == "" {
		return nil, &ServiceError{Message: "uploadId is required"}
	}

	user, err := s.users.GetByID(ctx, uploaderID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &ServiceError{Message: "user not found"}
	}
	if !user.IsCreatorRole() {
		return nil, ErrNotCreator
	}

	asset, err := s.imageSvc.PersistApprovedUpload(ctx, uploaderID, req.UploadID, models.ImageEntityPhoto, "")
	if err != nil {
		return nil, err
	}

	tags := req.Tags
	if len(tags) == 0 && s.tagger != nil {
		tags = s.tagger.InferTags(caption, "")
	}

	photo, err := s.store.Create(ctx, uploaderID, models.CreatePhotoParams{
		Caption:      caption,
		ImageAssetID: asset.ID,
		Tags:         tags,
	})
	if err != nil {
		// the asset is orphaned if photo creation fails
		if delErr := s.imageSvc.Delete(ctx, asset.ID); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned image asset", logging.WithField("error", delErr.Error()))
		}
		return nil, err
	}

	s.logger.Info("Photo published", logging.WithFields(map[string]interface{}{
		"photoId":    photo.ID,
		"uploaderId": uploaderID,
	}))

	return photo, nil
}

// Get fetches a photo and records a view for authenticated viewers. View
// recording is best effort and never fails the fetch.
func (s *Service) Get(ctx context.Context, id, viewerID string) (*models.Photo, error) {
	photo, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, nil
	}

	if viewerID != "" {
		if err := s.views.MarkViewed(ctx, photo.ContentRef(), viewerID); err != nil {
			s.logger.Warn("Failed to record photo view", logging.WithField("error", err.Error()))
		}
	}

	return photo, nil
}

// Delete removes a photo and its image asset.
func (s *Service) Delete(ctx context.Context, id, uploaderID string) error {
	photo, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if photo == nil {
		return &ServiceError{Message: "photo not found"}
	}
	if photo.UploaderID != uploaderID {
		return &ServiceError{Message: "photo not found"}
	}

	if err := s.store.Delete(ctx, id, uploaderID); err != nil {
		return err
	}

	if photo.ImageAssetID != "" {
		if err := s.imageSvc.Delete(ctx, photo.ImageAssetID); err != nil {
			s.logger.Warn("Failed to delete photo image asset", logging.WithField("error", err.Error()))
		}
	}

	return nil
}

// ListByUploader returns a user's photos, newest first.
func (s *Service) ListByUploader(ctx context.Context, uploaderID string, limit int) ([]*models.Photo, error) {
	return s.store.ListByUploader(ctx, uploaderID, limit)
}

// ListRecent returns the newest photos site-wide.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*models.Photo, error) {
	return s.store.ListRecent(ctx, limit)
}
