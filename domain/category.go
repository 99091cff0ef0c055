package domain

import (
	"time"

	"blog-backend/pkg/errors"
)

// Category is a self-referential tree node. A nil ParentID marks a
// main category; subcategories point at their parent's id.
type Category struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ParentID   *string   `json:"parentId,omitempty"`
	IsActive   bool      `json:"isActive"`
	PostsCount int       `json:"postsCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsMain reports whether the category has no parent.
func (c *Category) IsMain() bool {
	return c.ParentID == nil
}

// CategoryDraft carries the fields required to create a category.
type CategoryDraft struct {
	Name     string
	Slug     string
	ParentID *string
	IsActive *bool
}

// Validate checks required fields.
func (d *CategoryDraft) Validate() error {
	if d.Name == "" {
		return errors.NewValidationError("category name is required")
	}
	if d.Slug == "" {
		return errors.NewValidationError("category slug is required")
	}
	if d.ParentID != nil && *d.ParentID == "" {
		return errors.NewValidationError("category parent id must not be empty when set")
	}
	return nil
}

// Active resolves the draft's active flag, defaulting to true.
func (d *CategoryDraft) Active() bool {
	if d.IsActive == nil {
		return true
	}
	return *d.IsActive
}

// CategoryPatch is a partial update; nil fields are left unchanged.
type CategoryPatch struct {
	Name     *string
	Slug     *string
	ParentID *string
	IsActive *bool
}

// Apply copies the set fields onto the category.
func (p *CategoryPatch) Apply(c *Category) error {
	if p.Name != nil {
		if *p.Name == "" {
			return errors.NewValidationError("category name must not be empty")
		}
		c.Name = *p.Name
	}
	if p.Slug != nil {
		if *p.Slug == "" {
			return errors.NewValidationError("category slug must not be empty")
		}
		c.Slug = *p.Slug
	}
	if p.ParentID != nil {
		c.ParentID = p.ParentID
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	return nil
}
