package services

import (
	"context"

	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// CategoryService manages the two-level category tree. Slugs are
// unique across the whole tree; a parent reference must name an
// existing main category. PostsCount is recomputed on read.
type CategoryService struct {
	categories ports.CategoryRepository
	posts      ports.PostRepository
	logger     *zap.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories ports.CategoryRepository, posts ports.PostRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		posts:      posts,
		logger:     logger,
	}
}

// Create adds a category or subcategory.
func (s *CategoryService) Create(ctx context.Context, draft domain.CategoryDraft) (*domain.Category, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkSlugFree(ctx, draft.Slug, ""); err != nil {
		return nil, err
	}
	if draft.ParentID != nil {
		if err := s.checkParent(ctx, *draft.ParentID); err != nil {
			return nil, err
		}
	}

	c, err := s.categories.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		zap.String("categoryID", c.ID),
		zap.String("slug", c.Slug),
	)
	return c, nil
}

// Get returns a category with its post count.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("category")
	}
	if err := s.enrich(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetBySlug returns the category holding a slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if slug == "" {
		return nil, errors.NewValidationError("slug is required")
	}
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("category")
	}
	if err := s.enrich(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListMain returns exactly the categories with no parent.
func (s *CategoryService) ListMain(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.ListMain(ctx)
}

// Subcategories returns the direct children of a category.
func (s *CategoryService) Subcategories(ctx context.Context, parentID string) ([]*domain.Category, error) {
	if parentID == "" {
		return nil, errors.NewValidationError("parent id is required")
	}
	return s.categories.FindByParent(ctx, parentID)
}

// List returns a page of all categories, main and sub alike.
func (s *CategoryService) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.Category], error) {
	opts.Normalize()
	return s.categories.List(ctx, opts)
}

// Update applies a partial update to a category.
func (s *CategoryService) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	if patch.Slug != nil {
		if err := s.checkSlugFree(ctx, *patch.Slug, id); err != nil {
			return nil, err
		}
	}
	if patch.ParentID != nil && *patch.ParentID != "" {
		if *patch.ParentID == id {
			return nil, errors.NewValidationError("category cannot be its own parent")
		}
		if err := s.checkParent(ctx, *patch.ParentID); err != nil {
			return nil, err
		}
	}
	return s.categories.Update(ctx, id, patch)
}

// Delete removes a category. Categories with children cannot be
// removed; reparent or delete the children first.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	children, err := s.categories.FindByParent(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return errors.NewConflictError("category has subcategories")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.String("categoryID", id))
	return nil
}

func (s *CategoryService) checkSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errors.NewConflictError("category slug already in use")
	}
	return nil
}

func (s *CategoryService) checkParent(ctx context.Context, parentID string) error {
	parent, err := s.categories.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return errors.NewValidationError("parent category does not exist")
	}
	if !parent.IsMain() {
		return errors.NewValidationError("parent must be a main category")
	}
	return nil
}

func (s *CategoryService) enrich(ctx context.Context, c *domain.Category) error {
	page, err := s.posts.List(ctx, ports.PostListFilter{CategoryID: c.ID}, ports.ListOptions{Limit: 1})
	if err != nil {
		return err
	}
	c.PostsCount = page.Total
	return nil
}
