package domain

import (
	"encoding/json"
	"time"

	"blog-backend/pkg/errors"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusArchived  PostStatus = "ARCHIVED"
)

// IsValid reports whether the status is one of the known values.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post is a blog entry. Content is an opaque structured document;
// this layer stores and returns it without interpreting it.
type Post struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Content        json.RawMessage `json:"content"`
	AuthorID       string          `json:"authorId"`
	CategoryID     string          `json:"categoryId"`
	SubcategoryID  *string         `json:"subcategoryId,omitempty"`
	Status         PostStatus      `json:"status"`
	PublishedAt    *time.Time      `json:"publishedAt,omitempty"`
	Views          int             `json:"views"`
	LikesCount     int             `json:"likesCount"`
	CommentsCount  int             `json:"commentsCount"`
	BookmarksCount int             `json:"bookmarksCount"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// IsPublished reports whether the post is visible to readers.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// PostDraft carries the fields required to create a post.
type PostDraft struct {
	Title         string
	Slug          string
	Content       json.RawMessage
	AuthorID      string
	CategoryID    string
	SubcategoryID *string
	Status        PostStatus
}

// Validate checks required fields and normalizes defaults.
func (d *PostDraft) Validate() error {
	if d.Title == "" {
		return errors.NewValidationError("post title is required")
	}
	if d.Slug == "" {
		return errors.NewValidationError("post slug is required")
	}
	if len(d.Content) == 0 {
		return errors.NewValidationError("post content is required")
	}
	if d.AuthorID == "" {
		return errors.NewValidationError("post author is required")
	}
	if d.CategoryID == "" {
		return errors.NewValidationError("post category is required")
	}
	if d.Status == "" {
		d.Status = PostStatusDraft
	}
	if !d.Status.IsValid() {
		return errors.NewValidationError("unknown post status: " + string(d.Status))
	}
	return nil
}

// PostPatch is a partial update; nil fields are left unchanged.
// PublishedAt is owned by the status transition logic in the post
// service, which is the only writer for it.
type PostPatch struct {
	Title            *string
	Slug             *string
	Content          json.RawMessage
	CategoryID       *string
	SubcategoryID    *string
	Status           *PostStatus
	PublishedAt      *time.Time
	ClearPublishedAt bool
}

// Apply copies the set fields onto the post.
func (p *PostPatch) Apply(post *Post) error {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Slug != nil {
		post.Slug = *p.Slug
	}
	if len(p.Content) > 0 {
		post.Content = p.Content
	}
	if p.CategoryID != nil {
		post.CategoryID = *p.CategoryID
	}
	if p.SubcategoryID != nil {
		post.SubcategoryID = p.SubcategoryID
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return errors.NewValidationError("unknown post status: " + string(*p.Status))
		}
		post.Status = *p.Status
	}
	if p.PublishedAt != nil {
		post.PublishedAt = p.PublishedAt
	}
	if p.ClearPublishedAt {
		post.PublishedAt = nil
	}
	return nil
}
