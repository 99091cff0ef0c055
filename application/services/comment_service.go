package services

import (
	"context"

	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// CommentService manages comments and their one-level reply threads.
// New comments start approved; moderation flips the flag off.
type CommentService struct {
	comments      ports.CommentRepository
	posts         ports.PostRepository
	users         ports.UserRepository
	notifications *NotificationService
	logger        *zap.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	comments ports.CommentRepository,
	posts ports.PostRepository,
	users ports.UserRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		comments:      comments,
		posts:         posts,
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// Create adds a comment or a reply. A reply's parent must be a
// comment on the same post. The post's author is notified unless
// they wrote the comment themselves.
func (s *CommentService) Create(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, draft.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.NewValidationError("post does not exist")
	}

	if draft.ParentID != nil {
		parent, err := s.comments.FindByID(ctx, *draft.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, errors.NewValidationError("parent comment does not exist")
		}
		if parent.PostID != draft.PostID {
			return nil, errors.NewValidationError("parent comment belongs to another post")
		}
	}

	c, err := s.comments.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("comment created",
		zap.String("commentID", c.ID),
		zap.String("postID", c.PostID),
	)
	s.notifyAuthor(ctx, post, c)
	return c, nil
}

// notifyAuthor tells the post's author about the comment. Failures
// are logged and swallowed; the comment is already persisted.
func (s *CommentService) notifyAuthor(ctx context.Context, post *domain.Post, c *domain.Comment) {
	if s.notifications == nil || post.AuthorID == c.AuthorID {
		return
	}

	commenterName := c.AuthorID
	if commenter, err := s.users.FindByID(ctx, c.AuthorID); err == nil && commenter != nil {
		commenterName = commenter.Name
	}

	if _, err := s.notifications.NotifyNewComment(ctx, post.AuthorID, commenterName, post.ID); err != nil {
		s.logger.Warn("comment notification failed",
			zap.String("postID", post.ID),
			zap.Error(err),
		)
	}
}

// Get returns a single comment.
func (s *CommentService) Get(ctx context.Context, id string) (*domain.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("comment")
	}
	return c, nil
}

// ListByPost returns every comment on a post, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	if postID == "" {
		return nil, errors.NewValidationError("post id is required")
	}
	return s.comments.FindByPost(ctx, postID)
}

// ListByAuthor returns every comment by one author, newest first.
func (s *CommentService) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Comment, error) {
	if authorID == "" {
		return nil, errors.NewValidationError("author id is required")
	}
	return s.comments.FindByAuthor(ctx, authorID)
}

// Replies returns the direct replies to a comment.
func (s *CommentService) Replies(ctx context.Context, parentID string) ([]*domain.Comment, error) {
	if parentID == "" {
		return nil, errors.NewValidationError("parent id is required")
	}
	return s.comments.FindReplies(ctx, parentID)
}

// Update applies a partial update. Changing the content marks the
// comment as edited.
func (s *CommentService) Update(ctx context.Context, id string, patch domain.CommentPatch) (*domain.Comment, error) {
	return s.comments.Update(ctx, id, patch)
}

// SetApproved flips the moderation flag.
func (s *CommentService) SetApproved(ctx context.Context, id string, approved bool) (*domain.Comment, error) {
	return s.comments.Update(ctx, id, domain.CommentPatch{IsApproved: &approved})
}

// Delete removes a comment. Replies to it become orphans and stop
// appearing in reply listings.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("comment deleted", zap.String("commentID", id))
	return nil
}
