package models

import "time"

// ContentKind distinguishes photo and blog content. Photos and blogs live in
// separate tables and may share numeric ids, so identity is always the
// (kind, id) pair, never the id alone.
type ContentKind string

const (
	KindPhoto ContentKind = "photo"
	KindBlog  ContentKind = "blog"
)

// ContentRef is the dedup identity of a content item.
type ContentRef struct {
	Kind ContentKind
	ID   string
}

// ContentItem is the kind-agnostic view the feed composer works with.
// Both Photo and Blog implement it.
type ContentItem interface {
	ContentRef() ContentRef
	OwnerID() string
	CreatedTime() time.Time
	Engagement() int
}

// Photo represents an uploaded photo
type Photo struct {
	ID           string    `json:"id"`
	UploaderID   string    `json:"uploaderId"`
	Caption      string    `json:"caption"`
	ImageAssetID string    `json:"imageAssetId"`
	Tags         []string  `json:"tags,omitempty"`
	LikeCount    int       `json:"likeCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p *Photo) ContentRef() ContentRef { return ContentRef{Kind: KindPhoto, ID: p.ID} }
func (p *Photo) OwnerID() string { return p.UploaderID }
func (p *Photo) CreatedTime() time.Time { return p.CreatedAt }
func (p *Photo) Engagement() int { return p.LikeCount }

// Blog represents a blog post, optionally illustrated by a photo
type Blog struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	PhotoID   string    `json:"photoId,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Starred   bool      `json:"starred"`
	LikeCount int       `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b *Blog) ContentRef() ContentRef { return ContentRef{Kind: KindBlog, ID: b.ID} }
func (b *Blog) OwnerID() string { return b.AuthorID }
func (b *Blog) CreatedTime() time.Time { return b.CreatedAt }
func (b *Blog) Engagement() int { return b.LikeCount }

// CreatePhotoParams represents parameters for creating a photo record
type CreatePhotoParams struct {
	UploaderID   string   `json:"uploaderId"`
	Caption      string   `json:"caption"`
	ImageAssetID string   `json:"imageAssetId"`
	Tags         []string `json:"tags,omitempty"`
}

// CreateBlogParams represents parameters for creating a blog post
type CreateBlogParams struct {
	AuthorID string   `json:"authorId"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	PhotoID  string   `json:"photoId,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdateBlogParams represents parameters for editing a blog post
type UpdateBlogParams struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	PhotoID *string   `json:"photoId,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Starred *bool     `json:"starred,omitempty"`
}

// FeedItem is the serialized home feed entry handed to clients. It flattens
// the photo/blog union into one JSON shape for infinite scroll.
type FeedItem struct {
	Kind         ContentKind `json:"kind"`
	ID           string      `json:"id"`
	OwnerID      string      `json:"ownerId"`
	Caption      string      `json:"caption,omitempty"` // photo caption
	Title        string      `json:"title,omitempty"`   // blog title
	Content      string      `json:"content,omitempty"` // blog body
	ImageAssetID string      `json:"imageAssetId,omitempty"`
	PhotoID      string      `json:"photoId,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	LikeCount    int         `json:"likeCount"`
	Liked        bool        `json:"liked"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// FeedResponse is the home feed payload
type FeedResponse struct {
	Items []FeedItem `json:"items"`
	Count int        `json:"count"`
}

// NewFeedItem flattens a ContentItem into its serialized form.
func NewFeedItem(item ContentItem) FeedItem {
	switch v := item.(type) {
	case *Photo:
		return FeedItem{
			Kind:         KindPhoto,
			ID:           v.ID,
			OwnerID:      v.UploaderID,
			Caption:      v.Caption,
			ImageAssetID: v.ImageAssetID,
			Tags:         v.Tags,
			LikeCount:    v.LikeCount,
			CreatedAt:    v.CreatedAt,
		}
	case *Blog:
		return FeedItem{
			Kind:      KindBlog,
			ID:        v.ID,
			OwnerID:   v.AuthorID,
			Title:     v.Title,
			Content:   v.Content,
			PhotoID:   v.PhotoID,
			Tags:      v.Tags,
			LikeCount: v.LikeCount,
			CreatedAt: v.CreatedAt,
		}
	default:
		ref := item.ContentRef()
		return FeedItem{
			Kind:      ref.Kind,
			ID:        ref.ID,
			OwnerID:   item.OwnerID(),
			LikeCount: item.Engagement(),
			CreatedAt: item.CreatedTime(),
		}
	}
}
