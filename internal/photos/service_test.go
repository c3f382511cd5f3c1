package photos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lcharvet/fotoblog/internal/models"
	"github.com/lcharvet/fotoblog/internal/tagging"
	"github.com/lcharvet/fotoblog/internal/testutil"
)

type fakePhotoStore struct {
	photos    map[string]*models.Photo
	createErr error
	nextID    int
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: make(map[string]*models.Photo)}
}

func (f *fakePhotoStore) Create(ctx context.Context, uploaderID string, params models.CreatePhotoParams) (*models.Photo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	photo := &models.Photo{
		ID:           fmt.Sprintf("photo-%d", f.nextID),
		UploaderID:   uploaderID,
		Caption:      params.Caption,
		ImageAssetID: params.ImageAssetID,
		Tags:         params.Tags,
	}
	f.photos[photo.ID] = photo
	return photo, nil
}

func (f *fakePhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	return f.photos[id], nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, id, uploaderID string) error {
	photo, ok := f.photos[id]
	if !ok || photo.UploaderID != uploaderID {
		return errors.New("photo not found")
	}
	delete(f.photos, id)
	return nil
}

func (f *fakePhotoStore) ListByUploader(ctx context.Context, uploaderID string, limit int) ([]*models.Photo, error) {
	var out []*models.Photo
	for _, p := range f.photos {
		if p.UploaderID == uploaderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePhotoStore) ListRecent(ctx context.Context, limit int) ([]*models.Photo, error) {
	var out []*models.Photo
	for _, p := range f.photos {
		out = append(out, p)
	}
	return out, nil
}

type fakeUserReader struct {
	users map[string]*models.User
}

func (f *fakeUserReader) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

type fakeImagePipeline struct {
	persisted  []string
	deleted    []string
	persistErr error
}

func (f *fakeImagePipeline) PersistApprovedUpload(ctx context.Context, ownerUserID, uploadID string, entityType models.ImageEntityType, entityID string) (*models.ImageAsset, error) {
	if f.persistErr != nil {
		return nil, f.persistErr
	}
	f.persisted = append(f.persisted, uploadID)
	return &models.ImageAsset{
		ID:          "asset-" + uploadID,
		OwnerUserID: ownerUserID,
		EntityType:  entityType,
	}, nil
}

func (f *fakeImagePipeline) Delete(ctx context.Context, imageID string) error {
	f.deleted = append(f.deleted, imageID)
	return nil
}

type fakeViewRecorder struct {
	views []models.ContentRef
	err   error
}

func (f *fakeViewRecorder) MarkViewed(ctx context.Context, ref models.ContentRef, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.views = append(f.views, ref)
	return nil
}

type photoTestEnv struct {
	svc    *Service
	store  *fakePhotoStore
	images *fakeImagePipeline
	views  *fakeViewRecorder
}

func newPhotoTestEnv() *photoTestEnv {
	store := newFakePhotoStore()
	users := &fakeUserReader{users: map[string]*models.User{
		"creator-1":    {ID: "creator-1", Role: models.RoleCreator, Status: models.UserStatusActive},
		"subscriber-1": {ID: "subscriber-1", Role: models.RoleSubscriber, Status: models.UserStatusActive},
	}}
	images := &fakeImagePipeline{}
	views := &fakeViewRecorder{}
	svc := NewServiceWithDeps(store, users, images, views, tagging.New(), testutil.NullLogger())
	return &photoTestEnv{svc: svc, store: store, images: images, views: views}
}

func TestCreateValidation(t *testing.T) {
	env := newPhotoTestEnv()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreatePhotoRequest
	}{
		{
			name: "missing upload id",
			req:  CreatePhotoRequest{Caption: "sunset"},
		},
		{
			name: "caption too long",
			req:  CreatePhotoRequest{UploadID: "up-1", Caption: strings.Repeat("a", maxCaptionLength+1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, "creator-1", tt.req)
			var svcErr *ServiceError
			if !errors.As(err, &svcErr) {
				t.Errorf("Create() error = %v, want ServiceError", err)
			}
		})
	}
}

func TestCreateRejectsSubscriber(t *testing.T) {
	env := newPhotoTestEnv()

	_, err := env.svc.Create(context.Background(), "subscriber-1", CreatePhotoRequest{UploadID: "up-1"})
	if !errors.Is(err, ErrNotCreator) {
		t.Errorf("Create() error = %v, want ErrNotCreator", err)
	}
	if len(env.images.persisted) != 0 {
		t.Error("Create() should not persist upload before role check passes")
	}
}

func TestCreateUnknownUser(t *testing.T) {
	env := newPhotoTestEnv()

	_, err := env.svc.Create(context.Background(), "ghost", CreatePhotoRequest{UploadID: "up-1"})
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Create() error = %v, want ServiceError", err)
	}
}

func TestCreatePersistsUploadAndInfersTags(t *testing.T) {
	env := newPhotoTestEnv()

	photo, err := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{
		UploadID: "up-1",
		Caption:  "Studio portrait of a bride",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if photo.ImageAssetID != "asset-up-1" {
		t.Errorf("ImageAssetID = %q, want %q", photo.ImageAssetID, "asset-up-1")
	}

	got := make(map[string]bool)
	for _, tag := range photo.Tags {
		got[tag] = true
	}
	if !got["Portrait"] || !got["Wedding"] {
		t.Errorf("Tags = %v, want Portrait and Wedding inferred", photo.Tags)
	}
}

func TestCreateKeepsExplicitTags(t *testing.T) {
	env := newPhotoTestEnv()

	photo, err := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{
		UploadID: "up-1",
		Caption:  "Studio portrait",
		Tags:     []string{"Behind the Scenes"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(photo.Tags) != 1 || photo.Tags[0] != "Behind the Scenes" {
		t.Errorf("Tags = %v, want explicit tags untouched", photo.Tags)
	}
}

func TestCreateCleansUpAssetOnStoreFailure(t *testing.T) {
	env := newPhotoTestEnv()
	env.store.createErr = errors.New("insert failed")

	_, err := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{UploadID: "up-1"})
	if err == nil {
		t.Fatal("Create() should fail when the store fails")
	}
	if len(env.images.deleted) != 1 || env.images.deleted[0] != "asset-up-1" {
		t.Errorf("deleted assets = %v, want orphaned asset removed", env.images.deleted)
	}
}

func TestGetMarksView(t *testing.T) {
	env := newPhotoTestEnv()
	photo, err := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{UploadID: "up-1", Caption: "city"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := env.svc.Get(context.Background(), photo.ID, "subscriber-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.ID != photo.ID {
		t.Fatalf("Get() = %v, want photo %s", got, photo.ID)
	}
	if len(env.views.views) != 1 || env.views.views[0] != photo.ContentRef() {
		t.Errorf("views = %v, want one view for %v", env.views.views, photo.ContentRef())
	}
}

func TestGetAnonymousSkipsView(t *testing.T) {
	env := newPhotoTestEnv()
	photo, _ := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{UploadID: "up-1"})

	if _, err := env.svc.Get(context.Background(), photo.ID, ""); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(env.views.views) != 0 {
		t.Errorf("views = %v, want none for anonymous viewer", env.views.views)
	}
}

func TestGetSurvivesViewFailure(t *testing.T) {
	env := newPhotoTestEnv()
	env.views.err = errors.New("views table unavailable")
	photo, _ := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{UploadID: "up-1"})

	got, err := env.svc.Get(context.Background(), photo.ID, "subscriber-1")
	if err != nil || got == nil {
		t.Errorf("Get() = (%v, %v), want photo despite view failure", got, err)
	}
}

func TestGetMissingPhoto(t *testing.T) {
	env := newPhotoTestEnv()

	got, err := env.svc.Get(context.Background(), "nope", "subscriber-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil for missing photo", got)
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	env := newPhotoTestEnv()
	photo, _ := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{UploadID: "up-1"})

	err := env.svc.Delete(context.Background(), photo.ID, "subscriber-1")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Delete() error = %v, want ServiceError", err)
	}
	if len(env.images.deleted) != 0 {
		t.Error("Delete() should not touch the asset when ownership fails")
	}
	if _, ok := env.store.photos[photo.ID]; !ok {
		t.Error("photo should survive a foreign delete attempt")
	}
}

func TestDeleteRemovesAsset(t *testing.T) {
	env := newPhotoTestEnv()
	photo, _ := env.svc.Create(context.Background(), "creator-1", CreatePhotoRequest{UploadID: "up-1"})

	if err := env.svc.Delete(context.Background(), photo.ID, "creator-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(env.images.deleted) != 1 || env.images.deleted[0] != photo.ImageAssetID {
		t.Errorf("deleted assets = %v, want %q", env.images.deleted, photo.ImageAssetID)
	}
}
