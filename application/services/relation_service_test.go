package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/infrastructure/persistence/memory"
	"blog-backend/pkg/errors"
)

type relationFixture struct {
	users         *memory.UserRepository
	posts         *memory.PostRepository
	notifications *memory.NotificationRepository
	likes         *RelationService
	bookmarks     *RelationService
	svc           *NotificationService
}

func newRelationFixture(t *testing.T) *relationFixture {
	t.Helper()
	logger := zap.NewNop()

	users := memory.NewUserRepository()
	posts := memory.NewPostRepository()
	notifications := memory.NewNotificationRepository()
	notificationSvc := NewNotificationService(notifications, logger)

	return &relationFixture{
		users:         users,
		posts:         posts,
		notifications: notifications,
		svc:           notificationSvc,
		likes: NewRelationService(
			domain.RelationLike,
			memory.NewRelationRepository(domain.RelationLike),
			posts, users, notificationSvc, logger,
		),
		bookmarks: NewRelationService(
			domain.RelationBookmark,
			memory.NewRelationRepository(domain.RelationBookmark),
			posts, users, nil, logger,
		),
	}
}

func (f *relationFixture) seedPost(t *testing.T, authorID string) *domain.Post {
	t.Helper()
	ctx := context.Background()

	_, err := f.users.Create(ctx, domain.UserDraft{ID: authorID, Email: authorID + "@example.com", Name: "Author " + authorID})
	require.NoError(t, err)

	post, err := f.posts.Create(ctx, domain.PostDraft{
		Title:      "Hello",
		Slug:       "hello-" + authorID,
		Content:    json.RawMessage(`{"blocks":[]}`),
		AuthorID:   authorID,
		CategoryID: "cat-1",
		Status:     domain.PostStatusPublished,
	})
	require.NoError(t, err)
	return post
}

func TestCreateRelationIsIdempotent(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()
	post := f.seedPost(t, "author-1")

	first, err := f.likes.CreateRelation(ctx, "liker-1", post.ID, domain.TargetPost)
	require.NoError(t, err)

	second, err := f.likes.CreateRelation(ctx, "liker-1", post.ID, domain.TargetPost)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	count, err := f.likes.CountForTarget(ctx, post.ID, domain.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateRelationNotifiesAuthorOnce(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()
	post := f.seedPost(t, "author-1")

	_, err := f.users.Create(ctx, domain.UserDraft{ID: "liker-1", Name: "Alice"})
	require.NoError(t, err)

	_, err = f.likes.CreateRelation(ctx, "liker-1", post.ID, domain.TargetPost)
	require.NoError(t, err)
	// The repeat is idempotent and must not notify again.
	_, err = f.likes.CreateRelation(ctx, "liker-1", post.ID, domain.TargetPost)
	require.NoError(t, err)

	got, err := f.notifications.FindByUser(ctx, "author-1", ports.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationNewLike, got[0].Type)
	assert.Equal(t, "Novo like", got[0].Title)
	assert.Equal(t, "Alice curtiu seu post", got[0].Message)
	assert.Equal(t, "/posts/"+post.ID, got[0].ActionURL)
}

func TestCreateRelationSelfLikeDoesNotNotify(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()
	post := f.seedPost(t, "author-1")

	_, err := f.likes.CreateRelation(ctx, "author-1", post.ID, domain.TargetPost)
	require.NoError(t, err)

	got, err := f.notifications.FindByUser(ctx, "author-1", ports.NotificationQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRemoveRelationAbsentPairIsConflict(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()
	post := f.seedPost(t, "author-1")

	err := f.likes.RemoveRelation(ctx, "liker-1", post.ID, domain.TargetPost)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	// Create, remove, remove again: the second removal is stale.
	_, err = f.likes.CreateRelation(ctx, "liker-1", post.ID, domain.TargetPost)
	require.NoError(t, err)
	require.NoError(t, f.likes.RemoveRelation(ctx, "liker-1", post.ID, domain.TargetPost))

	err = f.likes.RemoveRelation(ctx, "liker-1", post.ID, domain.TargetPost)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestRelationKindsAreIndependent(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()
	post := f.seedPost(t, "author-1")

	_, err := f.likes.CreateRelation(ctx, "reader-1", post.ID, domain.TargetPost)
	require.NoError(t, err)
	_, err = f.bookmarks.CreateRelation(ctx, "reader-1", post.ID, domain.TargetPost)
	require.NoError(t, err)

	hasLike, err := f.likes.HasRelation(ctx, "reader-1", post.ID, domain.TargetPost)
	require.NoError(t, err)
	assert.True(t, hasLike)

	require.NoError(t, f.likes.RemoveRelation(ctx, "reader-1", post.ID, domain.TargetPost))

	hasBookmark, err := f.bookmarks.HasRelation(ctx, "reader-1", post.ID, domain.TargetPost)
	require.NoError(t, err)
	assert.True(t, hasBookmark)

	mine, err := f.bookmarks.RelationsForUser(ctx, "reader-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCreateRelationValidatesTargetKind(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()

	_, err := f.likes.CreateRelation(ctx, "liker-1", "post-1", domain.TargetKind("PAGE"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = f.likes.CreateRelation(ctx, "", "post-1", domain.TargetPost)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
