package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/google/uuid"
)

// CommentRepository is an in-memory ports.CommentRepository.
type CommentRepository struct {
	mu       sync.RWMutex
	comments map[string]*domain.Comment
}

// NewCommentRepository creates an empty in-memory comment repository.
func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[string]*domain.Comment)}
}

func cloneComment(c *domain.Comment) *domain.Comment {
	cp := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		cp.ParentID = &parent
	}
	return &cp
}

// Create stores a new comment with a generated id.
func (r *CommentRepository) Create(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

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
	r.comments[comment.ID] = cloneComment(comment)
	return comment, nil
}

// FindByID returns the comment or (nil, nil) when absent.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, nil
	}
	return cloneComment(comment), nil
}

// FindByPost returns every comment on a post, oldest first.
func (r *CommentRepository) FindByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return r.filter(func(c *domain.Comment) bool { return c.PostID == postID }), nil
}

// FindByAuthor returns the author's comments, oldest first.
func (r *CommentRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Comment, error) {
	return r.filter(func(c *domain.Comment) bool { return c.AuthorID == authorID }), nil
}

// FindReplies returns the direct replies to a comment, oldest first.
func (r *CommentRepository) FindReplies(ctx context.Context, parentID string) ([]*domain.Comment, error) {
	return r.filter(func(c *domain.Comment) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	}), nil
}

// FindApprovedSince returns approved comments created at or after
// the given instant.
func (r *CommentRepository) FindApprovedSince(ctx context.Context, since time.Time) ([]*domain.Comment, error) {
	return r.filter(func(c *domain.Comment) bool {
		return c.IsApproved && !c.CreatedAt.Before(since)
	}), nil
}

func (r *CommentRepository) filter(keep func(*domain.Comment) bool) []*domain.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var comments []*domain.Comment
	for _, comment := range r.comments {
		if keep(comment) {
			comments = append(comments, cloneComment(comment))
		}
	}
	sort.Slice(comments, func(a, b int) bool {
		return comments[a].CreatedAt.Before(comments[b].CreatedAt)
	})
	return comments
}

// Update patches the stored comment.
func (r *CommentRepository) Update(ctx context.Context, id string, patch domain.CommentPatch) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("comment")
	}

	updated := cloneComment(comment)
	if err := patch.Apply(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	r.comments[id] = updated
	return cloneComment(updated), nil
}

// Delete removes the comment, failing when the id is unknown.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return apperrors.NewNotFoundError("comment")
	}
	delete(r.comments, id)
	return nil
}
