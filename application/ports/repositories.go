package ports

import (
	"context"
	"time"

	"blog-backend/domain"
)

// The entity repository contracts. Every contract has exactly two
// production implementations, one per storage backend; the provider
// selector binds one family at startup and callers never see which.
//
// Conventions shared by all contracts:
//   - FindByX lookups return (nil, nil) when no record matches.
//   - Update and Delete on a missing id return a NOT_FOUND error.
//   - Drivers normalize timestamps and ids before records leave the
//     driver boundary; no backend-native type ever crosses it.

// ListOptions is the pagination request for root-aggregate listings.
type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps the options to sane bounds.
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Page is one page of a listing plus the total match count.
type Page[T any] struct {
	Items []*T
	Total int
}

// UserRepository persists identity-provider-backed user records.
type UserRepository interface {
	Create(ctx context.Context, draft domain.UserDraft) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, opts ListOptions) (*Page[domain.User], error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// CategoryRepository persists the category tree.
type CategoryRepository interface {
	Create(ctx context.Context, draft domain.CategoryDraft) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	// FindByParent returns the direct children of a category.
	FindByParent(ctx context.Context, parentID string) ([]*domain.Category, error)
	// ListMain returns exactly the categories with no parent.
	ListMain(ctx context.Context) ([]*domain.Category, error)
	List(ctx context.Context, opts ListOptions) (*Page[domain.Category], error)
	Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// PostListFilter narrows a post listing; zero values mean "any".
type PostListFilter struct {
	Status     domain.PostStatus
	AuthorID   string
	CategoryID string
}

// PostRepository persists posts.
type PostRepository interface {
	Create(ctx context.Context, draft domain.PostDraft) (*domain.Post, error)
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error)
	// FindByStatus returns every post in the given status. The
	// dashboard windows over the result in-process; both drivers
	// implement this as a scan-and-filter.
	FindByStatus(ctx context.Context, status domain.PostStatus) ([]*domain.Post, error)
	List(ctx context.Context, filter PostListFilter, opts ListOptions) (*Page[domain.Post], error)
	Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error)
	// IncrementViews atomically bumps the view counter. This is the
	// only writer for the counter.
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository persists comments and replies.
type CommentRepository interface {
	Create(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error)
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	FindByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*domain.Comment, error)
	// FindReplies returns the direct replies to a comment.
	FindReplies(ctx context.Context, parentID string) ([]*domain.Comment, error)
	// FindApprovedSince returns approved comments created at or after
	// the given instant, for the dashboard's window reads.
	FindApprovedSince(ctx context.Context, since time.Time) ([]*domain.Comment, error)
	Update(ctx context.Context, id string, patch domain.CommentPatch) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

// RelationRepository persists one relation type (likes or bookmarks;
// the provider selector binds a separate instance per type).
type RelationRepository interface {
	// Create persists the relation keyed by its composite natural key.
	// The write is conditional on the key not existing; when a record
	// for the same (user, target) pair already exists — including one
	// written by a concurrent request — the existing record is
	// returned unchanged rather than an error.
	Create(ctx context.Context, draft domain.RelationDraft) (*domain.Relation, error)
	FindByID(ctx context.Context, id string) (*domain.Relation, error)
	FindByUserAndTarget(ctx context.Context, userID string, target domain.TargetRef) (*domain.Relation, error)
	FindByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Relation, error)
	FindByUser(ctx context.Context, userID string) ([]*domain.Relation, error)
	CountByTarget(ctx context.Context, target domain.TargetRef) (int, error)
	// FindCreatedSince returns relations created at or after the given
	// instant, for the dashboard's window reads.
	FindCreatedSince(ctx context.Context, since time.Time) ([]*domain.Relation, error)
	Delete(ctx context.Context, id string) error
}

// NotificationQuery narrows a per-user notification listing.
type NotificationQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error)
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	FindByUser(ctx context.Context, userID string, q NotificationQuery) ([]*domain.Notification, error)
	// MarkRead sets isRead and stamps readAt on the first call; it is
	// a no-op success on an already-read notification, preserving the
	// original readAt.
	MarkRead(ctx context.Context, id string, readAt time.Time) (*domain.Notification, error)
	// MarkAllRead transitions every unread notification of the user
	// and returns the number affected; zero matches is success.
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
}
