package surreal

import (
	"context"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/google/uuid"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

const tableCategories = "categories"

type categoryRecord struct {
	ID        *models.RecordID      `json:"id,omitempty"`
	Name      string                `json:"name"`
	Slug      string                `json:"slug"`
	ParentID  *string               `json:"parent_id,omitempty"`
	IsActive  bool                  `json:"is_active"`
	CreatedAt models.CustomDateTime `json:"created_at"`
	UpdatedAt models.CustomDateTime `json:"updated_at"`
}

func newCategoryRecord(c *domain.Category) categoryRecord {
	rid := recordID(tableCategories, c.ID)
	return categoryRecord{
		ID:        &rid,
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  c.ParentID,
		IsActive:  c.IsActive,
		CreatedAt: models.CustomDateTime{Time: c.CreatedAt},
		UpdatedAt: models.CustomDateTime{Time: c.UpdatedAt},
	}
}

func (rec categoryRecord) toDomain() *domain.Category {
	return &domain.Category{
		ID:        recordIDString(rec.ID),
		Name:      rec.Name,
		Slug:      rec.Slug,
		ParentID:  rec.ParentID,
		IsActive:  rec.IsActive,
		CreatedAt: rec.CreatedAt.Time,
		UpdatedAt: rec.UpdatedAt.Time,
	}
}

func categoriesFromRows(rows []categoryRecord) []*domain.Category {
	categories := make([]*domain.Category, 0, len(rows))
	for _, rec := range rows {
		categories = append(categories, rec.toDomain())
	}
	return categories
}

// CategoryRepository is the SurrealDB implementation of
// ports.CategoryRepository.
type CategoryRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewCategoryRepository creates a SurrealDB-backed category repository.
func NewCategoryRepository(store *Store, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{store: store, logger: logger}
}

// Create writes a new category with a generated id.
func (r *CategoryRepository) Create(ctx context.Context, draft domain.CategoryDraft) (*domain.Category, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

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

	if _, err := surrealdb.Create[categoryRecord](ctx, db, tableCategories, newCategoryRecord(category)); err != nil {
		return nil, r.store.translate("Create", err)
	}

	r.logger.Debug("category created", zap.String("category_id", category.ID))
	return category, nil
}

// FindByID returns the category or (nil, nil) when absent.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := surrealdb.Select[categoryRecord](ctx, db, recordID(tableCategories, id))
	if err != nil {
		return nil, r.store.translate("Select", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	return rec.toDomain(), nil
}

// FindBySlug looks the category up by slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	rows, err := queryRows[categoryRecord](ctx, r.store, "FindBySlug",
		"SELECT * FROM categories WHERE slug = $slug LIMIT 1",
		map[string]any{"slug": slug})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

// FindByParent returns the direct children of a category.
func (r *CategoryRepository) FindByParent(ctx context.Context, parentID string) ([]*domain.Category, error) {
	rows, err := queryRows[categoryRecord](ctx, r.store, "FindByParent",
		"SELECT * FROM categories WHERE parent_id = $parent ORDER BY name ASC",
		map[string]any{"parent": parentID})
	if err != nil {
		return nil, err
	}
	return categoriesFromRows(rows), nil
}

// ListMain returns the categories with no parent. Absent and NONE
// parent fields both mean "no parent" here.
func (r *CategoryRepository) ListMain(ctx context.Context) ([]*domain.Category, error) {
	rows, err := queryRows[categoryRecord](ctx, r.store, "ListMain",
		"SELECT * FROM categories WHERE parent_id IS NONE ORDER BY name ASC", nil)
	if err != nil {
		return nil, err
	}
	return categoriesFromRows(rows), nil
}

// List returns one page of categories ordered by name, plus the
// total count.
func (r *CategoryRepository) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.Category], error) {
	opts.Normalize()

	total, err := queryCount(ctx, r.store, "List",
		"SELECT count() FROM categories GROUP ALL", nil)
	if err != nil {
		return nil, err
	}

	rows, err := queryRows[categoryRecord](ctx, r.store, "List",
		"SELECT * FROM categories ORDER BY name ASC LIMIT $limit START $start",
		map[string]any{"limit": opts.Limit, "start": opts.Offset})
	if err != nil {
		return nil, err
	}

	return &ports.Page[domain.Category]{Items: categoriesFromRows(rows), Total: total}, nil
}

// Update reads, patches, and writes the record back.
func (r *CategoryRepository) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	category, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperrors.NewNotFoundError("category")
	}

	if err := patch.Apply(category); err != nil {
		return nil, err
	}
	category.UpdatedAt = time.Now().UTC()

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := surrealdb.Update[categoryRecord](ctx, db, recordID(tableCategories, id), newCategoryRecord(category)); err != nil {
		return nil, r.store.translate("Update", err)
	}
	return category, nil
}

// Delete removes the record, failing when the id is unknown.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("category")
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Delete[categoryRecord](ctx, db, recordID(tableCategories, id)); err != nil {
		return r.store.translate("Delete", err)
	}
	return nil
}
