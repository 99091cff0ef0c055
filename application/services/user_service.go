package services

import (
	"context"

	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// UserService manages user records synced from the identity provider.
// The stored record never carries counters; PostsCount and
// CommentsCount are recomputed on read from the owning repositories.
type UserService struct {
	users    ports.UserRepository
	posts    ports.PostRepository
	comments ports.CommentRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users ports.UserRepository,
	posts ports.PostRepository,
	comments ports.CommentRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		posts:    posts,
		comments: comments,
		logger:   logger,
	}
}

// Create registers a user under the identity provider's subject id.
// A duplicate id or an id already holding another email is a Conflict.
func (s *UserService) Create(ctx context.Context, draft domain.UserDraft) (*domain.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if draft.Email != "" {
		taken, err := s.users.FindByEmail(ctx, draft.Email)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, errors.NewConflictError("email already in use")
		}
	}

	u, err := s.users.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("userID", u.ID),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

// Get returns a user with freshly computed activity counters.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.NewNotFoundError("user")
	}
	if err := s.enrich(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail returns the user holding an email address, if any.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, errors.NewValidationError("email is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.NewNotFoundError("user")
	}
	if err := s.enrich(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns a page of users, newest first. Listings skip counter
// enrichment; the per-user fan-out is not worth it for an index view.
func (s *UserService) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.User], error) {
	opts.Normalize()
	return s.users.List(ctx, opts)
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Email != nil && *patch.Email != "" {
		taken, err := s.users.FindByEmail(ctx, *patch.Email)
		if err != nil {
			return nil, err
		}
		if taken != nil && taken.ID != id {
			return nil, errors.NewConflictError("email already in use")
		}
	}
	return s.users.Update(ctx, id, patch)
}

// Delete removes a user record. Posts and comments the user authored
// are left in place.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("userID", id))
	return nil
}

func (s *UserService) enrich(ctx context.Context, u *domain.User) error {
	posts, err := s.posts.FindByAuthor(ctx, u.ID)
	if err != nil {
		return err
	}
	comments, err := s.comments.FindByAuthor(ctx, u.ID)
	if err != nil {
		return err
	}
	u.PostsCount = len(posts)
	u.CommentsCount = len(comments)
	return nil
}
