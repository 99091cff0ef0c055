package surreal

import (
	"context"
	"time"

	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/google/uuid"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

const tableComments = "comments"

type commentRecord struct {
	ID         *models.RecordID      `json:"id,omitempty"`
	Content    string                `json:"content"`
	AuthorID   string                `json:"author_id"`
	PostID     string                `json:"post_id"`
	ParentID   *string               `json:"parent_id,omitempty"`
	IsApproved bool                  `json:"is_approved"`
	IsEdited   bool                  `json:"is_edited"`
	CreatedAt  models.CustomDateTime `json:"created_at"`
	UpdatedAt  models.CustomDateTime `json:"updated_at"`
}

func newCommentRecord(c *domain.Comment) commentRecord {
	rid := recordID(tableComments, c.ID)
	return commentRecord{
		ID:         &rid,
		Content:    c.Content,
		AuthorID:   c.AuthorID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		IsApproved: c.IsApproved,
		IsEdited:   c.IsEdited,
		CreatedAt:  models.CustomDateTime{Time: c.CreatedAt},
		UpdatedAt:  models.CustomDateTime{Time: c.UpdatedAt},
	}
}

func (rec commentRecord) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:         recordIDString(rec.ID),
		Content:    rec.Content,
		AuthorID:   rec.AuthorID,
		PostID:     rec.PostID,
		ParentID:   rec.ParentID,
		IsApproved: rec.IsApproved,
		IsEdited:   rec.IsEdited,
		CreatedAt:  rec.CreatedAt.Time,
		UpdatedAt:  rec.UpdatedAt.Time,
	}
}

func commentsFromRows(rows []commentRecord) []*domain.Comment {
	comments := make([]*domain.Comment, 0, len(rows))
	for _, rec := range rows {
		comments = append(comments, rec.toDomain())
	}
	return comments
}

// CommentRepository is the SurrealDB implementation of
// ports.CommentRepository.
type CommentRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewCommentRepository creates a SurrealDB-backed comment repository.
func NewCommentRepository(store *Store, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{store: store, logger: logger}
}

// Create writes a new comment with a generated id. New comments start
// approved; moderation flips the flag off, not on.
func (r *CommentRepository) Create(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		ID:         uuid.New().String(),
		Content:    draft.Content,
		AuthorID:   draft.AuthorID,
		PostID:     draft.PostID,
		ParentID:   draft.ParentID,
		IsApproved: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := surrealdb.Create[commentRecord](ctx, db, tableComments, newCommentRecord(comment)); err != nil {
		return nil, r.store.translate("Create", err)
	}

	r.logger.Debug("comment created",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", comment.PostID),
	)
	return comment, nil
}

// FindByID returns the comment or (nil, nil) when absent.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := surrealdb.Select[commentRecord](ctx, db, recordID(tableComments, id))
	if err != nil {
		return nil, r.store.translate("Select", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	return rec.toDomain(), nil
}

// FindByPost returns every comment on a post, oldest first.
func (r *CommentRepository) FindByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	rows, err := queryRows[commentRecord](ctx, r.store, "FindByPost",
		"SELECT * FROM comments WHERE post_id = $post ORDER BY created_at ASC",
		map[string]any{"post": postID})
	if err != nil {
		return nil, err
	}
	return commentsFromRows(rows), nil
}

// FindByAuthor returns the author's comments, newest first.
func (r *CommentRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Comment, error) {
	rows, err := queryRows[commentRecord](ctx, r.store, "FindByAuthor",
		"SELECT * FROM comments WHERE author_id = $author ORDER BY created_at DESC",
		map[string]any{"author": authorID})
	if err != nil {
		return nil, err
	}
	return commentsFromRows(rows), nil
}

// FindReplies returns the direct replies to a comment, oldest first.
func (r *CommentRepository) FindReplies(ctx context.Context, parentID string) ([]*domain.Comment, error) {
	rows, err := queryRows[commentRecord](ctx, r.store, "FindReplies",
		"SELECT * FROM comments WHERE parent_id = $parent ORDER BY created_at ASC",
		map[string]any{"parent": parentID})
	if err != nil {
		return nil, err
	}
	return commentsFromRows(rows), nil
}

// FindApprovedSince returns approved comments created at or after the
// given instant.
func (r *CommentRepository) FindApprovedSince(ctx context.Context, since time.Time) ([]*domain.Comment, error) {
	rows, err := queryRows[commentRecord](ctx, r.store, "FindApprovedSince",
		"SELECT * FROM comments WHERE is_approved = true AND created_at >= $since",
		map[string]any{"since": models.CustomDateTime{Time: since.UTC()}})
	if err != nil {
		return nil, err
	}
	return commentsFromRows(rows), nil
}

// Update reads, patches, and writes the record back.
func (r *CommentRepository) Update(ctx context.Context, id string, patch domain.CommentPatch) (*domain.Comment, error) {
	comment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperrors.NewNotFoundError("comment")
	}

	if err := patch.Apply(comment); err != nil {
		return nil, err
	}
	comment.UpdatedAt = time.Now().UTC()

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := surrealdb.Update[commentRecord](ctx, db, recordID(tableComments, id), newCommentRecord(comment)); err != nil {
		return nil, r.store.translate("Update", err)
	}
	return comment, nil
}

// Delete removes the record, failing when the id is unknown.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("comment")
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Delete[commentRecord](ctx, db, recordID(tableComments, id)); err != nil {
		return r.store.translate("Delete", err)
	}
	return nil
}
