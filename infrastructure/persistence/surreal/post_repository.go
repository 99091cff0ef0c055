package surreal

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/google/uuid"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

const tablePosts = "posts"

// postRecord keeps the post body as an opaque JSON string; the
// document structure never matters to the storage layer.
type postRecord struct {
	ID            *models.RecordID       `json:"id,omitempty"`
	Title         string                 `json:"title"`
	Slug          string                 `json:"slug"`
	Content       string                 `json:"content"`
	AuthorID      string                 `json:"author_id"`
	CategoryID    string                 `json:"category_id"`
	SubcategoryID *string                `json:"subcategory_id,omitempty"`
	Status        string                 `json:"status"`
	PublishedAt   *models.CustomDateTime `json:"published_at,omitempty"`
	Views         int                    `json:"views"`
	CreatedAt     models.CustomDateTime  `json:"created_at"`
	UpdatedAt     models.CustomDateTime  `json:"updated_at"`
}

func newPostRecord(p *domain.Post) postRecord {
	rid := recordID(tablePosts, p.ID)
	return postRecord{
		ID:            &rid,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       string(p.Content),
		AuthorID:      p.AuthorID,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		Status:        string(p.Status),
		PublishedAt:   optTime(p.PublishedAt),
		Views:         p.Views,
		CreatedAt:     models.CustomDateTime{Time: p.CreatedAt},
		UpdatedAt:     models.CustomDateTime{Time: p.UpdatedAt},
	}
}

func (rec postRecord) toDomain() *domain.Post {
	return &domain.Post{
		ID:            recordIDString(rec.ID),
		Title:         rec.Title,
		Slug:          rec.Slug,
		Content:       json.RawMessage(rec.Content),
		AuthorID:      rec.AuthorID,
		CategoryID:    rec.CategoryID,
		SubcategoryID: rec.SubcategoryID,
		Status:        domain.PostStatus(rec.Status),
		PublishedAt:   optTimeBack(rec.PublishedAt),
		Views:         rec.Views,
		CreatedAt:     rec.CreatedAt.Time,
		UpdatedAt:     rec.UpdatedAt.Time,
	}
}

func postsFromRows(rows []postRecord) []*domain.Post {
	posts := make([]*domain.Post, 0, len(rows))
	for _, rec := range rows {
		posts = append(posts, rec.toDomain())
	}
	return posts
}

// PostRepository is the SurrealDB implementation of
// ports.PostRepository.
type PostRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewPostRepository creates a SurrealDB-backed post repository.
func NewPostRepository(store *Store, logger *zap.Logger) *PostRepository {
	return &PostRepository{store: store, logger: logger}
}

// Create writes a new post with a generated id.
func (r *PostRepository) Create(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:            uuid.New().String(),
		Title:         draft.Title,
		Slug:          draft.Slug,
		Content:       draft.Content,
		AuthorID:      draft.AuthorID,
		CategoryID:    draft.CategoryID,
		SubcategoryID: draft.SubcategoryID,
		Status:        draft.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.Status == domain.PostStatusPublished {
		post.PublishedAt = &now
	}

	if _, err := surrealdb.Create[postRecord](ctx, db, tablePosts, newPostRecord(post)); err != nil {
		return nil, r.store.translate("Create", err)
	}

	r.logger.Debug("post created",
		zap.String("post_id", post.ID),
		zap.String("status", string(post.Status)),
	)
	return post, nil
}

// FindByID returns the post or (nil, nil) when absent.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := surrealdb.Select[postRecord](ctx, db, recordID(tablePosts, id))
	if err != nil {
		return nil, r.store.translate("Select", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	return rec.toDomain(), nil
}

// FindBySlug looks the post up by slug.
func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	rows, err := queryRows[postRecord](ctx, r.store, "FindBySlug",
		"SELECT * FROM posts WHERE slug = $slug LIMIT 1",
		map[string]any{"slug": slug})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

// FindByAuthor returns the author's posts, newest first.
func (r *PostRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	rows, err := queryRows[postRecord](ctx, r.store, "FindByAuthor",
		"SELECT * FROM posts WHERE author_id = $author ORDER BY created_at DESC",
		map[string]any{"author": authorID})
	if err != nil {
		return nil, err
	}
	return postsFromRows(rows), nil
}

// FindByStatus returns every post in the given status.
func (r *PostRepository) FindByStatus(ctx context.Context, status domain.PostStatus) ([]*domain.Post, error) {
	rows, err := queryRows[postRecord](ctx, r.store, "FindByStatus",
		"SELECT * FROM posts WHERE status = $status",
		map[string]any{"status": string(status)})
	if err != nil {
		return nil, err
	}
	return postsFromRows(rows), nil
}

// List returns one filtered page of posts, newest first, plus the
// total count of matches.
func (r *PostRepository) List(ctx context.Context, filter ports.PostListFilter, opts ports.ListOptions) (*ports.Page[domain.Post], error) {
	opts.Normalize()

	conds := []string{}
	vars := map[string]any{"limit": opts.Limit, "start": opts.Offset}
	if filter.Status != "" {
		conds = append(conds, "status = $status")
		vars["status"] = string(filter.Status)
	}
	if filter.AuthorID != "" {
		conds = append(conds, "author_id = $author")
		vars["author"] = filter.AuthorID
	}
	if filter.CategoryID != "" {
		conds = append(conds, "category_id = $category")
		vars["category"] = filter.CategoryID
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	total, err := queryCount(ctx, r.store, "List",
		"SELECT count() FROM posts"+where+" GROUP ALL", vars)
	if err != nil {
		return nil, err
	}

	rows, err := queryRows[postRecord](ctx, r.store, "List",
		"SELECT * FROM posts"+where+" ORDER BY created_at DESC LIMIT $limit START $start", vars)
	if err != nil {
		return nil, err
	}

	return &ports.Page[domain.Post]{Items: postsFromRows(rows), Total: total}, nil
}

// Update patches the record through a MERGE so the stored view
// counter is never rewound by a concurrent IncrementViews.
func (r *PostRepository) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	post, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NewNotFoundError("post")
	}

	if err := patch.Apply(post); err != nil {
		return nil, err
	}
	post.UpdatedAt = time.Now().UTC()

	merge := map[string]any{
		"title":          post.Title,
		"slug":           post.Slug,
		"content":        string(post.Content),
		"category_id":    post.CategoryID,
		"subcategory_id": post.SubcategoryID,
		"status":         string(post.Status),
		"published_at":   optTime(post.PublishedAt),
		"updated_at":     models.CustomDateTime{Time: post.UpdatedAt},
	}

	rows, err := queryRows[postRecord](ctx, r.store, "Update",
		"UPDATE $post MERGE $data RETURN AFTER",
		map[string]any{"post": recordID(tablePosts, id), "data": merge})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError("post")
	}
	return rows[0].toDomain(), nil
}

// IncrementViews bumps the view counter in a single statement.
func (r *PostRepository) IncrementViews(ctx context.Context, id string) error {
	rows, err := queryRows[postRecord](ctx, r.store, "IncrementViews",
		"UPDATE $post SET views += 1 RETURN AFTER",
		map[string]any{"post": recordID(tablePosts, id)})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return apperrors.NewNotFoundError("post")
	}
	return nil
}

// Delete removes the record, failing when the id is unknown.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("post")
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Delete[postRecord](ctx, db, recordID(tablePosts, id)); err != nil {
		return r.store.translate("Delete", err)
	}
	return nil
}
