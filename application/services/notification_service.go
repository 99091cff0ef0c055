package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// NotificationService delivers per-user notifications and tracks
// their read state. Read transitions are monotonic: ReadAt is stamped
// exactly once, on the first transition, and never rewritten.
type NotificationService struct {
	notifications ports.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notifications ports.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// Create persists a notification for its recipient. New notifications
// always start unread, regardless of what the caller sends.
func (s *NotificationService) Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	n, err := s.notifications.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("notification created",
		zap.String("notificationID", n.ID),
		zap.String("userID", n.UserID),
		zap.String("type", string(n.Type)),
	)
	return n, nil
}

// Get returns a single notification.
func (s *NotificationService) Get(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errors.NewNotFoundError("notification")
	}
	return n, nil
}

// List returns a user's notifications, newest first, optionally
// restricted to unread ones.
func (s *NotificationService) List(ctx context.Context, userID string, q ports.NotificationQuery) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id is required")
	}
	return s.notifications.FindByUser(ctx, userID, q)
}

// CountUnread returns the number of unread notifications for a user.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.NewValidationError("user id is required")
	}
	return s.notifications.CountUnread(ctx, userID)
}

// MarkRead transitions a notification to read. Calling it again on an
// already-read notification succeeds and returns the record unchanged,
// keeping the ReadAt of the first transition.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	if id == "" {
		return nil, errors.NewValidationError("notification id is required")
	}
	return s.notifications.MarkRead(ctx, id, time.Now().UTC())
}

// MarkAllRead transitions every unread notification of a user and
// returns the number affected. Zero matches is a success.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.NewValidationError("user id is required")
	}

	count, err := s.notifications.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	s.logger.Debug("notifications marked read",
		zap.String("userID", userID),
		zap.Int("count", count),
	)
	return count, nil
}

// Delete removes a single notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.NewValidationError("notification id is required")
	}
	return s.notifications.Delete(ctx, id)
}

// DeleteAllForUser removes every notification of a user and returns
// the number removed.
func (s *NotificationService) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.NewValidationError("user id is required")
	}
	return s.notifications.DeleteAllForUser(ctx, userID)
}

// The convenience constructors below build the fixed payload for each
// event and persist it. They are plain builders: callers decide when
// an event warrants a notification, and nothing deduplicates repeated
// events for the same pair.

// NotifyNewLike notifies a post's author that someone liked the post.
func (s *NotificationService) NotifyNewLike(ctx context.Context, authorID, likerName, postID string) (*domain.Notification, error) {
	return s.Create(ctx, domain.NotificationDraft{
		UserID:      authorID,
		Type:        domain.NotificationNewLike,
		Title:       "Novo like",
		Message:     likerName + " curtiu seu post",
		ActionURL:   "/posts/" + postID,
		RelatedID:   postID,
		RelatedKind: domain.RelatedPost,
	})
}

// NotifyNewComment notifies a post's author about a new comment. The
// notification links back to the post, not the individual comment.
func (s *NotificationService) NotifyNewComment(ctx context.Context, authorID, commenterName, postID string) (*domain.Notification, error) {
	return s.Create(ctx, domain.NotificationDraft{
		UserID:      authorID,
		Type:        domain.NotificationNewComment,
		Title:       "Novo comentário",
		Message:     commenterName + " comentou no seu post",
		ActionURL:   "/posts/" + postID,
		RelatedID:   postID,
		RelatedKind: domain.RelatedPost,
	})
}

// NotifyNewFollower notifies a user that someone started following them.
func (s *NotificationService) NotifyNewFollower(ctx context.Context, userID, followerName, followerID string) (*domain.Notification, error) {
	return s.Create(ctx, domain.NotificationDraft{
		UserID:      userID,
		Type:        domain.NotificationNewFollower,
		Title:       "Novo seguidor",
		Message:     followerName + " começou a seguir você",
		ActionURL:   "/users/" + followerID,
		RelatedID:   followerID,
		RelatedKind: domain.RelatedUser,
	})
}
