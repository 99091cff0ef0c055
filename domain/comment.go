package domain

import (
	"time"

	"blog-backend/pkg/errors"
)

// Comment is a reader comment on a post. ParentID, when set, makes
// the comment a reply to another comment on the same post.
type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	PostID     string    `json:"postId"`
	ParentID   *string   `json:"parentId,omitempty"`
	IsApproved bool      `json:"isApproved"`
	IsEdited   bool      `json:"isEdited"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CommentDraft carries the fields required to create a comment.
type CommentDraft struct {
	Content  string
	AuthorID string
	PostID   string
	ParentID *string
}

// Validate checks required fields.
func (d *CommentDraft) Validate() error {
	if d.Content == "" {
		return errors.NewValidationError("comment content is required")
	}
	if d.AuthorID == "" {
		return errors.NewValidationError("comment author is required")
	}
	if d.PostID == "" {
		return errors.NewValidationError("comment post is required")
	}
	if d.ParentID != nil && *d.ParentID == "" {
		return errors.NewValidationError("comment parent id must not be empty when set")
	}
	return nil
}

// CommentPatch is a partial update; nil fields are left unchanged.
// Changing the content flips the edited flag.
type CommentPatch struct {
	Content    *string
	IsApproved *bool
}

// Apply copies the set fields onto the comment.
func (p *CommentPatch) Apply(c *Comment) error {
	if p.Content != nil {
		if *p.Content == "" {
			return errors.NewValidationError("comment content must not be empty")
		}
		c.Content = *p.Content
		c.IsEdited = true
	}
	if p.IsApproved != nil {
		c.IsApproved = *p.IsApproved
	}
	return nil
}
