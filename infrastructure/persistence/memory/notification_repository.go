package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/google/uuid"
)

// NotificationRepository is an in-memory ports.NotificationRepository.
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
}

// NewNotificationRepository creates an empty in-memory notification
// repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[string]*domain.Notification)}
}

func cloneNotification(n *domain.Notification) *domain.Notification {
	cp := *n
	if n.ReadAt != nil {
		readAt := *n.ReadAt
		cp.ReadAt = &readAt
	}
	return &cp
}

// Create stores a new unread notification with a generated id.
func (r *NotificationRepository) Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	notification := &domain.Notification{
		ID:          uuid.New().String(),
		UserID:      draft.UserID,
		Type:        draft.Type,
		Title:       draft.Title,
		Message:     draft.Message,
		ActionURL:   draft.ActionURL,
		RelatedID:   draft.RelatedID,
		RelatedKind: draft.RelatedKind,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}
	r.notifications[notification.ID] = cloneNotification(notification)
	return notification, nil
}

// FindByID returns the notification or (nil, nil) when absent.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notification, ok := r.notifications[id]
	if !ok {
		return nil, nil
	}
	return cloneNotification(notification), nil
}

// FindByUser returns one page of the user's notifications, newest
// first.
func (r *NotificationRepository) FindByUser(ctx context.Context, userID string, q ports.NotificationQuery) ([]*domain.Notification, error) {
	opts := ports.ListOptions{Limit: q.Limit, Offset: q.Offset}
	opts.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var notifications []*domain.Notification
	for _, notification := range r.notifications {
		if notification.UserID != userID {
			continue
		}
		if q.UnreadOnly && notification.IsRead {
			continue
		}
		notifications = append(notifications, cloneNotification(notification))
	}
	sort.Slice(notifications, func(a, b int) bool {
		return notifications[a].CreatedAt.After(notifications[b].CreatedAt)
	})
	return pageOf(notifications, opts).Items, nil
}

// MarkRead flips the notification to read on the first call and is a
// no-op success afterwards, preserving the original read timestamp.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, readAt time.Time) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("notification")
	}
	if !notification.IsRead {
		notification.IsRead = true
		stamp := readAt.UTC()
		notification.ReadAt = &stamp
	}
	return cloneNotification(notification), nil
}

// MarkAllRead transitions every unread notification of the user and
// returns the number affected.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp := readAt.UTC()
	count := 0
	for _, notification := range r.notifications {
		if notification.UserID == userID && !notification.IsRead {
			notification.IsRead = true
			readCopy := stamp
			notification.ReadAt = &readCopy
			count++
		}
	}
	return count, nil
}

// CountUnread counts the user's unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, notification := range r.notifications {
		if notification.UserID == userID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

// Delete removes the notification, failing when the id is unknown.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[id]; !ok {
		return apperrors.NewNotFoundError("notification")
	}
	delete(r.notifications, id)
	return nil
}

// DeleteAllForUser removes every notification of the user and
// returns the number removed.
func (r *NotificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, notification := range r.notifications {
		if notification.UserID == userID {
			delete(r.notifications, id)
			count++
		}
	}
	return count, nil
}
