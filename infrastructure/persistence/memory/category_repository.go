package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/google/uuid"
)

// CategoryRepository is an in-memory ports.CategoryRepository.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
}

// NewCategoryRepository creates an empty in-memory category
// repository.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]*domain.Category)}
}

func cloneCategory(c *domain.Category) *domain.Category {
	cp := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		cp.ParentID = &parent
	}
	return &cp
}

// Create stores a new category with a generated id.
func (r *CategoryRepository) Create(ctx context.Context, draft domain.CategoryDraft) (*domain.Category, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      draft.Name,
		Slug:      draft.Slug,
		ParentID:  draft.ParentID,
		IsActive:  draft.Active(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.categories[category.ID] = cloneCategory(category)
	return category, nil
}

// FindByID returns the category or (nil, nil) when absent.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	return cloneCategory(category), nil
}

// FindBySlug returns the category or (nil, nil) when absent.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, category := range r.categories {
		if category.Slug == slug {
			return cloneCategory(category), nil
		}
	}
	return nil, nil
}

// FindByParent returns the direct children of a category, by name.
func (r *CategoryRepository) FindByParent(ctx context.Context, parentID string) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var children []*domain.Category
	for _, category := range r.categories {
		if category.ParentID != nil && *category.ParentID == parentID {
			children = append(children, cloneCategory(category))
		}
	}
	sortCategoriesByName(children)
	return children, nil
}

// ListMain returns the categories with no parent, by name.
func (r *CategoryRepository) ListMain(ctx context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var main []*domain.Category
	for _, category := range r.categories {
		if category.ParentID == nil {
			main = append(main, cloneCategory(category))
		}
	}
	sortCategoriesByName(main)
	return main, nil
}

// List returns one page of categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.Category], error) {
	opts.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		categories = append(categories, cloneCategory(category))
	}
	sortCategoriesByName(categories)
	return pageOf(categories, opts), nil
}

// Update patches the stored category.
func (r *CategoryRepository) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("category")
	}

	updated := cloneCategory(category)
	if err := patch.Apply(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	r.categories[id] = updated
	return cloneCategory(updated), nil
}

// Delete removes the category, failing when the id is unknown.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return apperrors.NewNotFoundError("category")
	}
	delete(r.categories, id)
	return nil
}

func sortCategoriesByName(categories []*domain.Category) {
	sort.Slice(categories, func(a, b int) bool {
		return categories[a].Name < categories[b].Name
	})
}
