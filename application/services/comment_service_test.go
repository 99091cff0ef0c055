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

type commentFixture struct {
	posts         *memory.PostRepository
	users         *memory.UserRepository
	notifications *memory.NotificationRepository
	svc           *CommentService
	post          *domain.Post
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	f := &commentFixture{
		posts:         memory.NewPostRepository(),
		users:         memory.NewUserRepository(),
		notifications: memory.NewNotificationRepository(),
	}
	f.svc = NewCommentService(
		memory.NewCommentRepository(),
		f.posts,
		f.users,
		NewNotificationService(f.notifications, logger),
		logger,
	)

	_, err := f.users.Create(ctx, domain.UserDraft{ID: "author-1", Name: "Author"})
	require.NoError(t, err)
	_, err = f.users.Create(ctx, domain.UserDraft{ID: "reader-1", Name: "Rita"})
	require.NoError(t, err)

	f.post, err = f.posts.Create(ctx, domain.PostDraft{
		Title:      "Commented",
		Slug:       "commented",
		Content:    json.RawMessage(`{}`),
		AuthorID:   "author-1",
		CategoryID: "cat-1",
		Status:     domain.PostStatusPublished,
	})
	require.NoError(t, err)
	return f
}

func TestCommentCreateNotifiesPostAuthor(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, domain.CommentDraft{
		Content: "Great read", AuthorID: "reader-1", PostID: f.post.ID,
	})
	require.NoError(t, err)
	assert.True(t, c.IsApproved)
	assert.False(t, c.IsEdited)

	got, err := f.notifications.FindByUser(ctx, "author-1", ports.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationNewComment, got[0].Type)
	assert.Equal(t, "Rita comentou no seu post", got[0].Message)
	assert.Equal(t, "/posts/"+f.post.ID, got[0].ActionURL)
}

func TestCommentOnOwnPostDoesNotNotify(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CommentDraft{
		Content: "Replying to myself", AuthorID: "author-1", PostID: f.post.ID,
	})
	require.NoError(t, err)

	got, err := f.notifications.FindByUser(ctx, "author-1", ports.NotificationQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCommentReplyValidation(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	parent, err := f.svc.Create(ctx, domain.CommentDraft{
		Content: "Parent", AuthorID: "reader-1", PostID: f.post.ID,
	})
	require.NoError(t, err)

	reply, err := f.svc.Create(ctx, domain.CommentDraft{
		Content: "Reply", AuthorID: "author-1", PostID: f.post.ID, ParentID: &parent.ID,
	})
	require.NoError(t, err)

	replies, err := f.svc.Replies(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)

	// A reply to a comment on another post is rejected.
	other, err := f.posts.Create(ctx, domain.PostDraft{
		Title: "Other", Slug: "other", Content: json.RawMessage(`{}`),
		AuthorID: "author-1", CategoryID: "cat-1",
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CommentDraft{
		Content: "Lost", AuthorID: "reader-1", PostID: other.ID, ParentID: &parent.ID,
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	missing := "no-such-comment"
	_, err = f.svc.Create(ctx, domain.CommentDraft{
		Content: "Orphan", AuthorID: "reader-1", PostID: f.post.ID, ParentID: &missing,
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestCommentOnMissingPostIsRejected(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CommentDraft{
		Content: "Void", AuthorID: "reader-1", PostID: "no-such-post",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestCommentEditAndModeration(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, domain.CommentDraft{
		Content: "Frist", AuthorID: "reader-1", PostID: f.post.ID,
	})
	require.NoError(t, err)

	fixed := "First"
	edited, err := f.svc.Update(ctx, c.ID, domain.CommentPatch{Content: &fixed})
	require.NoError(t, err)
	assert.Equal(t, "First", edited.Content)
	assert.True(t, edited.IsEdited)

	rejected, err := f.svc.SetApproved(ctx, c.ID, false)
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)
	// Moderation alone does not mark the comment edited.
	assert.True(t, rejected.IsEdited)
}
