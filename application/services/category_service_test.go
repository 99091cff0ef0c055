package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-backend/domain"
	"blog-backend/infrastructure/persistence/memory"
	"blog-backend/pkg/errors"
)

func newCategoryService() *CategoryService {
	return NewCategoryService(memory.NewCategoryRepository(), memory.NewPostRepository(), zap.NewNop())
}

func mustCategory(t *testing.T, svc *CategoryService, name, slug string, parentID *string) *domain.Category {
	t.Helper()
	c, err := svc.Create(context.Background(), domain.CategoryDraft{Name: name, Slug: slug, ParentID: parentID})
	require.NoError(t, err)
	return c
}

func TestListMainReturnsOnlyParentlessCategories(t *testing.T) {
	svc := newCategoryService()
	ctx := context.Background()

	tech := mustCategory(t, svc, "Tech", "tech", nil)
	mustCategory(t, svc, "Life", "life", nil)
	mustCategory(t, svc, "Go", "go", &tech.ID)

	main, err := svc.ListMain(ctx)
	require.NoError(t, err)
	require.Len(t, main, 2)
	for _, c := range main {
		assert.Nil(t, c.ParentID)
	}
}

func TestCategorySlugMustBeUnique(t *testing.T) {
	svc := newCategoryService()
	ctx := context.Background()

	mustCategory(t, svc, "Tech", "tech", nil)

	_, err := svc.Create(ctx, domain.CategoryDraft{Name: "Technology", Slug: "tech"})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	// Updating a category to its own slug is fine; to a taken one is not.
	other := mustCategory(t, svc, "Life", "life", nil)
	slug := "life"
	_, err = svc.Update(ctx, other.ID, domain.CategoryPatch{Slug: &slug})
	require.NoError(t, err)

	taken := "tech"
	_, err = svc.Update(ctx, other.ID, domain.CategoryPatch{Slug: &taken})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestCategoryParentMustBeMain(t *testing.T) {
	svc := newCategoryService()
	ctx := context.Background()

	tech := mustCategory(t, svc, "Tech", "tech", nil)
	sub := mustCategory(t, svc, "Go", "go", &tech.ID)

	// A subcategory cannot itself be a parent.
	_, err := svc.Create(ctx, domain.CategoryDraft{Name: "Generics", Slug: "generics", ParentID: &sub.ID})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	missing := "no-such-category"
	_, err = svc.Create(ctx, domain.CategoryDraft{Name: "Orphan", Slug: "orphan", ParentID: &missing})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestCategorySubcategoriesListing(t *testing.T) {
	svc := newCategoryService()
	ctx := context.Background()

	tech := mustCategory(t, svc, "Tech", "tech", nil)
	mustCategory(t, svc, "Go", "go", &tech.ID)
	mustCategory(t, svc, "Rust", "rust", &tech.ID)

	subs, err := svc.Subcategories(ctx, tech.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestCategoryDeleteWithChildrenIsConflict(t *testing.T) {
	svc := newCategoryService()
	ctx := context.Background()

	tech := mustCategory(t, svc, "Tech", "tech", nil)
	sub := mustCategory(t, svc, "Go", "go", &tech.ID)

	err := svc.Delete(ctx, tech.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	require.NoError(t, svc.Delete(ctx, sub.ID))
	require.NoError(t, svc.Delete(ctx, tech.ID))
}

func TestCategoryGetBySlug(t *testing.T) {
	svc := newCategoryService()
	ctx := context.Background()

	created := mustCategory(t, svc, "Tech", "tech", nil)

	got, err := svc.GetBySlug(ctx, "tech")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetBySlug(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
