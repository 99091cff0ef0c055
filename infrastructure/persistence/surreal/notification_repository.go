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

const tableNotifications = "notifications"

type notificationRecord struct {
	ID          *models.RecordID       `json:"id,omitempty"`
	UserID      string                 `json:"user_id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	ActionURL   string                 `json:"action_url,omitempty"`
	RelatedID   string                 `json:"related_id,omitempty"`
	RelatedKind string                 `json:"related_kind,omitempty"`
	IsRead      bool                   `json:"is_read"`
	ReadAt      *models.CustomDateTime `json:"read_at,omitempty"`
	CreatedAt   models.CustomDateTime  `json:"created_at"`
}

func newNotificationRecord(n *domain.Notification) notificationRecord {
	rid := recordID(tableNotifications, n.ID)
	return notificationRecord{
		ID:          &rid,
		UserID:      n.UserID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		ActionURL:   n.ActionURL,
		RelatedID:   n.RelatedID,
		RelatedKind: string(n.RelatedKind),
		IsRead:      n.IsRead,
		ReadAt:      optTime(n.ReadAt),
		CreatedAt:   models.CustomDateTime{Time: n.CreatedAt},
	}
}

func (rec notificationRecord) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:          recordIDString(rec.ID),
		UserID:      rec.UserID,
		Type:        domain.NotificationType(rec.Type),
		Title:       rec.Title,
		Message:     rec.Message,
		ActionURL:   rec.ActionURL,
		RelatedID:   rec.RelatedID,
		RelatedKind: domain.RelatedKind(rec.RelatedKind),
		IsRead:      rec.IsRead,
		ReadAt:      optTimeBack(rec.ReadAt),
		CreatedAt:   rec.CreatedAt.Time,
	}
}

// NotificationRepository is the SurrealDB implementation of
// ports.NotificationRepository.
type NotificationRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewNotificationRepository creates a SurrealDB-backed notification
// repository.
func NewNotificationRepository(store *Store, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{store: store, logger: logger}
}

// Create writes a new unread notification with a generated id.
func (r *NotificationRepository) Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

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

	if _, err := surrealdb.Create[notificationRecord](ctx, db, tableNotifications, newNotificationRecord(notification)); err != nil {
		return nil, r.store.translate("Create", err)
	}

	r.logger.Debug("notification created",
		zap.String("notification_id", notification.ID),
		zap.String("type", string(notification.Type)),
	)
	return notification, nil
}

// FindByID returns the notification or (nil, nil) when absent.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := surrealdb.Select[notificationRecord](ctx, db, recordID(tableNotifications, id))
	if err != nil {
		return nil, r.store.translate("Select", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	return rec.toDomain(), nil
}

// FindByUser returns one page of the user's notifications, newest
// first.
func (r *NotificationRepository) FindByUser(ctx context.Context, userID string, q ports.NotificationQuery) ([]*domain.Notification, error) {
	opts := ports.ListOptions{Limit: q.Limit, Offset: q.Offset}
	opts.Normalize()

	sql := "SELECT * FROM notifications WHERE user_id = $user"
	if q.UnreadOnly {
		sql += " AND is_read = false"
	}
	sql += " ORDER BY created_at DESC LIMIT $limit START $start"

	rows, err := queryRows[notificationRecord](ctx, r.store, "FindByUser", sql,
		map[string]any{"user": userID, "limit": opts.Limit, "start": opts.Offset})
	if err != nil {
		return nil, err
	}

	notifications := make([]*domain.Notification, 0, len(rows))
	for _, rec := range rows {
		notifications = append(notifications, rec.toDomain())
	}
	return notifications, nil
}

// MarkRead flips the record to read in a single conditional
// statement. The WHERE clause only matches an unread record; when
// nothing matches, the current record decides between "already read"
// (returned as-is, preserving the original read timestamp) and "no
// such notification".
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, readAt time.Time) (*domain.Notification, error) {
	rows, err := queryRows[notificationRecord](ctx, r.store, "MarkRead",
		"UPDATE $id SET is_read = true, read_at = $read_at WHERE is_read = false RETURN AFTER",
		map[string]any{
			"id":      recordID(tableNotifications, id),
			"read_at": models.CustomDateTime{Time: readAt.UTC()},
		})
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows[0].toDomain(), nil
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFoundError("notification")
	}
	return current, nil
}

// MarkAllRead transitions every unread notification of the user in
// one statement and returns the number affected.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	rows, err := queryRows[notificationRecord](ctx, r.store, "MarkAllRead",
		"UPDATE notifications SET is_read = true, read_at = $read_at WHERE user_id = $user AND is_read = false RETURN AFTER",
		map[string]any{
			"user":    userID,
			"read_at": models.CustomDateTime{Time: readAt.UTC()},
		})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// CountUnread counts the user's unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	return queryCount(ctx, r.store, "CountUnread",
		"SELECT count() FROM notifications WHERE user_id = $user AND is_read = false GROUP ALL",
		map[string]any{"user": userID})
}

// Delete removes the record, failing when the id is unknown.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("notification")
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Delete[notificationRecord](ctx, db, recordID(tableNotifications, id)); err != nil {
		return r.store.translate("Delete", err)
	}
	return nil
}

// DeleteAllForUser removes every notification of the user in one
// statement and returns the number removed.
func (r *NotificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	rows, err := queryRows[notificationRecord](ctx, r.store, "DeleteAllForUser",
		"DELETE notifications WHERE user_id = $user RETURN BEFORE",
		map[string]any{"user": userID})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
