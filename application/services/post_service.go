package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// PostService manages posts and their publication lifecycle. The
// service is the only writer for PublishedAt: publishing stamps it,
// reverting to draft clears it, and plain updates cannot touch it.
// Views is a stored counter owned by RecordView; the like, comment
// and bookmark counters are recomputed on read.
type PostService struct {
	posts      ports.PostRepository
	categories ports.CategoryRepository
	comments   ports.CommentRepository
	likes      ports.RelationRepository
	bookmarks  ports.RelationRepository
	logger     *zap.Logger
}

// NewPostService creates a new post service.
func NewPostService(
	posts ports.PostRepository,
	categories ports.CategoryRepository,
	comments ports.CommentRepository,
	likes ports.RelationRepository,
	bookmarks ports.RelationRepository,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		posts:      posts,
		categories: categories,
		comments:   comments,
		likes:      likes,
		bookmarks:  bookmarks,
		logger:     logger,
	}
}

// Create adds a post. A draft created directly in PUBLISHED status
// gets its publication timestamp stamped by the repository's view of
// the creation time, via an immediate publish transition.
func (s *PostService) Create(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkSlugFree(ctx, draft.Slug, ""); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, draft.CategoryID, draft.SubcategoryID); err != nil {
		return nil, err
	}

	publishNow := draft.Status == domain.PostStatusPublished
	if publishNow {
		// Create in draft, then run the publish transition so
		// PublishedAt is set on exactly one code path.
		draft.Status = domain.PostStatusDraft
	}

	p, err := s.posts.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	if publishNow {
		p, err = s.Publish(ctx, p.ID)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("post created",
		zap.String("postID", p.ID),
		zap.String("slug", p.Slug),
		zap.String("status", string(p.Status)),
	)
	return p, nil
}

// Get returns a post with freshly computed engagement counters.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("post")
	}
	if err := s.enrich(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetBySlug returns the post holding a slug.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, errors.NewValidationError("slug is required")
	}
	p, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("post")
	}
	if err := s.enrich(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns a filtered page of posts, newest first. Listings skip
// counter enrichment.
func (s *PostService) List(ctx context.Context, filter ports.PostListFilter, opts ports.ListOptions) (*ports.Page[domain.Post], error) {
	opts.Normalize()
	return s.posts.List(ctx, filter, opts)
}

// ListByAuthor returns every post by one author.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	if authorID == "" {
		return nil, errors.NewValidationError("author id is required")
	}
	return s.posts.FindByAuthor(ctx, authorID)
}

// Update applies a partial update. Status changes route through the
// transition logic so PublishedAt stays consistent: entering
// PUBLISHED stamps it if unset, returning to DRAFT clears it, and
// archiving keeps the original publication time.
func (s *PostService) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	// PublishedAt is owned here, never by the caller.
	patch.PublishedAt = nil
	patch.ClearPublishedAt = false

	if patch.Slug != nil {
		if err := s.checkSlugFree(ctx, *patch.Slug, id); err != nil {
			return nil, err
		}
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, *patch.CategoryID, patch.SubcategoryID); err != nil {
			return nil, err
		}
	}

	if patch.Status != nil {
		current, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, errors.NewNotFoundError("post")
		}
		switch {
		case *patch.Status == domain.PostStatusPublished && current.PublishedAt == nil:
			now := time.Now().UTC()
			patch.PublishedAt = &now
		case *patch.Status == domain.PostStatusDraft:
			patch.ClearPublishedAt = true
		}
	}

	return s.posts.Update(ctx, id, patch)
}

// Publish transitions a post to PUBLISHED, stamping PublishedAt on
// the first publication. Republishing an archived post keeps the
// original timestamp.
func (s *PostService) Publish(ctx context.Context, id string) (*domain.Post, error) {
	status := domain.PostStatusPublished
	p, err := s.Update(ctx, id, domain.PostPatch{Status: &status})
	if err != nil {
		return nil, err
	}
	s.logger.Info("post published", zap.String("postID", p.ID))
	return p, nil
}

// Archive transitions a post to ARCHIVED. The publication timestamp
// is kept for the history.
func (s *PostService) Archive(ctx context.Context, id string) (*domain.Post, error) {
	status := domain.PostStatusArchived
	return s.Update(ctx, id, domain.PostPatch{Status: &status})
}

// RevertToDraft transitions a post back to DRAFT and clears its
// publication timestamp.
func (s *PostService) RevertToDraft(ctx context.Context, id string) (*domain.Post, error) {
	status := domain.PostStatusDraft
	return s.Update(ctx, id, domain.PostPatch{Status: &status})
}

// RecordView bumps the post's view counter. This is the single writer
// path for that counter.
func (s *PostService) RecordView(ctx context.Context, id string) error {
	if id == "" {
		return errors.NewValidationError("post id is required")
	}
	return s.posts.IncrementViews(ctx, id)
}

// Delete removes a post. Its comments and relations are left to
// expire by their own lifecycle.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", zap.String("postID", id))
	return nil
}

func (s *PostService) checkSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errors.NewConflictError("post slug already in use")
	}
	return nil
}

func (s *PostService) checkCategory(ctx context.Context, categoryID string, subcategoryID *string) error {
	cat, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return errors.NewValidationError("category does not exist")
	}
	if subcategoryID != nil {
		sub, err := s.categories.FindByID(ctx, *subcategoryID)
		if err != nil {
			return err
		}
		if sub == nil {
			return errors.NewValidationError("subcategory does not exist")
		}
		if sub.ParentID == nil || *sub.ParentID != categoryID {
			return errors.NewValidationError("subcategory does not belong to the category")
		}
	}
	return nil
}

func (s *PostService) enrich(ctx context.Context, p *domain.Post) error {
	target := domain.TargetRef{Kind: domain.TargetPost, ID: p.ID}

	likes, err := s.likes.CountByTarget(ctx, target)
	if err != nil {
		return err
	}
	bookmarks, err := s.bookmarks.CountByTarget(ctx, target)
	if err != nil {
		return err
	}
	comments, err := s.comments.FindByPost(ctx, p.ID)
	if err != nil {
		return err
	}

	p.LikesCount = likes
	p.BookmarksCount = bookmarks
	p.CommentsCount = len(comments)
	return nil
}
