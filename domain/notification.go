package domain

import (
	"time"

	"blog-backend/pkg/errors"
)

// NotificationType enumerates the domain events a user can be
// notified about.
type NotificationType string

const (
	NotificationNewComment    NotificationType = "NEW_COMMENT"
	NotificationNewLike       NotificationType = "NEW_LIKE"
	NotificationNewFollower   NotificationType = "NEW_FOLLOWER"
	NotificationPostPublished NotificationType = "POST_PUBLISHED"
	NotificationMention       NotificationType = "MENTION"
	NotificationSystem        NotificationType = "SYSTEM"
)

// IsValid reports whether the type is one of the known values.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationNewComment, NotificationNewLike, NotificationNewFollower,
		NotificationPostPublished, NotificationMention, NotificationSystem:
		return true
	}
	return false
}

// RelatedKind names the entity a notification links back to.
type RelatedKind string

const (
	RelatedPost    RelatedKind = "POST"
	RelatedComment RelatedKind = "COMMENT"
	RelatedUser    RelatedKind = "USER"
)

// Notification is a message delivered to a single recipient.
// ReadAt is set exactly once, on the first transition to read.
type Notification struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	ActionURL   string           `json:"actionUrl,omitempty"`
	RelatedID   string           `json:"relatedId,omitempty"`
	RelatedKind RelatedKind      `json:"relatedKind,omitempty"`
	IsRead      bool             `json:"isRead"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// NotificationDraft carries the fields required to create a
// notification. IsRead always starts false.
type NotificationDraft struct {
	UserID      string
	Type        NotificationType
	Title       string
	Message     string
	ActionURL   string
	RelatedID   string
	RelatedKind RelatedKind
}

// Validate checks required fields.
func (d *NotificationDraft) Validate() error {
	if d.UserID == "" {
		return errors.NewValidationError("notification recipient is required")
	}
	if !d.Type.IsValid() {
		return errors.NewValidationError("unknown notification type: " + string(d.Type))
	}
	if d.Title == "" {
		return errors.NewValidationError("notification title is required")
	}
	if d.Message == "" {
		return errors.NewValidationError("notification message is required")
	}
	return nil
}
