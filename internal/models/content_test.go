package models

import (
	"testing"
	"time"
)

func TestContentRef_KindsDoNotCollide(t *testing.T) {
	photo := &Photo{ID: "42", UploaderID: "u1"}
	blog := &Blog{ID: "42", AuthorID: "u1"}

	if photo.ContentRef() == blog.ContentRef() {
		t.Error("photo and blog sharing an id must have distinct content refs")
	}
}

func TestNewFeedItem_Photo(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	photo := &Photo{
		ID:           "p1",
		UploaderID:   "u1",
		Caption:      "sunset",
		ImageAssetID: "asset-1",
		Tags:         []string{"landscape"},
		LikeCount:    7,
		CreatedAt:    created,
	}

	item := NewFeedItem(photo)
	if item.Kind != KindPhoto {
		t.Errorf("Kind = %v, want %v", item.Kind, KindPhoto)
	}
	if item.Caption != "sunset" || item.ImageAssetID != "asset-1" {
		t.Errorf("photo fields not carried over: %+v", item)
	}
	if item.LikeCount != 7 || !item.CreatedAt.Equal(created) {
		t.Errorf("engagement/timestamps not carried over: %+v", item)
	}
}

func TestNewFeedItem_Blog(t *testing.T) {
	blog := &Blog{
		ID:       "b1",
		AuthorID: "u2",
		Title:    "On light",
		Content:  "Long form text",
		PhotoID:  "p9",
	}

	item := NewFeedItem(blog)
	if item.Kind != KindBlog {
		t.Errorf("Kind = %v, want %v", item.Kind, KindBlog)
	}
	if item.Title != "On light" || item.PhotoID != "p9" {
		t.Errorf("blog fields not carried over: %+v", item)
	}
}
