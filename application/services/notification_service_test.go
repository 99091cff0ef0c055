package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/infrastructure/persistence/memory"
	"blog-backend/pkg/errors"
)

func newNotificationService() *NotificationService {
	return NewNotificationService(memory.NewNotificationRepository(), zap.NewNop())
}

func seedNotification(t *testing.T, svc *NotificationService, userID string) *domain.Notification {
	t.Helper()
	n, err := svc.Create(context.Background(), domain.NotificationDraft{
		UserID:  userID,
		Type:    domain.NotificationSystem,
		Title:   "Maintenance",
		Message: "Scheduled downtime tonight",
	})
	require.NoError(t, err)
	return n
}

func TestNotificationCreateStartsUnread(t *testing.T) {
	svc := newNotificationService()
	n := seedNotification(t, svc, "user-1")

	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadAt)
	assert.NotEmpty(t, n.ID)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()
	n := seedNotification(t, svc, "user-1")

	first, err := svc.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	second, err := svc.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	require.NotNil(t, second.ReadAt)
	// ReadAt keeps the instant of the first transition.
	assert.Equal(t, *first.ReadAt, *second.ReadAt)
}

func TestMarkReadMissingNotificationIsNotFound(t *testing.T) {
	svc := newNotificationService()

	_, err := svc.MarkRead(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestMarkAllRead(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	seedNotification(t, svc, "user-1")
	seedNotification(t, svc, "user-1")
	seedNotification(t, svc, "user-2")

	count, err := svc.MarkAllRead(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unread, err := svc.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, unread)

	otherUnread, err := svc.CountUnread(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, otherUnread)
}

func TestMarkAllReadZeroMatchesIsSuccess(t *testing.T) {
	svc := newNotificationService()

	count, err := svc.MarkAllRead(context.Background(), "user-without-notifications")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListUnreadOnly(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	a := seedNotification(t, svc, "user-1")
	seedNotification(t, svc, "user-1")

	_, err := svc.MarkRead(ctx, a.ID)
	require.NoError(t, err)

	unread, err := svc.List(ctx, "user-1", ports.NotificationQuery{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEqual(t, a.ID, unread[0].ID)

	all, err := svc.List(ctx, "user-1", ports.NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteAllForUser(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	seedNotification(t, svc, "user-1")
	seedNotification(t, svc, "user-1")
	seedNotification(t, svc, "user-2")

	removed, err := svc.DeleteAllForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	remaining, err := svc.List(ctx, "user-2", ports.NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestNotifyBuilders(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	like, err := svc.NotifyNewLike(ctx, "author-1", "Alice", "post-1")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationNewLike, like.Type)
	assert.Equal(t, "Novo like", like.Title)
	assert.Equal(t, "Alice curtiu seu post", like.Message)
	assert.Equal(t, "/posts/post-1", like.ActionURL)
	assert.Equal(t, domain.RelatedPost, like.RelatedKind)
	assert.Equal(t, "post-1", like.RelatedID)

	comment, err := svc.NotifyNewComment(ctx, "author-1", "Bob", "post-1")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationNewComment, comment.Type)
	assert.Equal(t, "Novo comentário", comment.Title)
	assert.Equal(t, "Bob comentou no seu post", comment.Message)
	assert.Equal(t, "/posts/post-1", comment.ActionURL)

	follower, err := svc.NotifyNewFollower(ctx, "user-1", "Carol", "user-2")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationNewFollower, follower.Type)
	assert.Equal(t, "Novo seguidor", follower.Title)
	assert.Equal(t, "Carol começou a seguir você", follower.Message)
	assert.Equal(t, "/users/user-2", follower.ActionURL)
	assert.Equal(t, domain.RelatedUser, follower.RelatedKind)
}

func TestNotificationCreateValidation(t *testing.T) {
	svc := newNotificationService()

	_, err := svc.Create(context.Background(), domain.NotificationDraft{
		UserID: "user-1",
		Type:   domain.NotificationType("SMOKE_SIGNAL"),
		Title:  "t", Message: "m",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
