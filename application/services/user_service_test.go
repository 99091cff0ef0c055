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

type userFixture struct {
	posts    *memory.PostRepository
	comments *memory.CommentRepository
	svc      *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		posts:    memory.NewPostRepository(),
		comments: memory.NewCommentRepository(),
	}
	f.svc = NewUserService(memory.NewUserRepository(), f.posts, f.comments, zap.NewNop())
	return f
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.UserDraft{ID: "sub-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.UserDraft{ID: "sub-2", Email: "a@example.com", Name: "B"})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	// Same subject id is a duplicate regardless of email.
	_, err = f.svc.Create(ctx, domain.UserDraft{ID: "sub-1", Email: "b@example.com", Name: "A"})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestUserGetComputesActivityCounters(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	u, err := f.svc.Create(ctx, domain.UserDraft{ID: "sub-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)

	post, err := f.posts.Create(ctx, domain.PostDraft{
		Title: "Mine", Slug: "mine", Content: json.RawMessage(`{}`),
		AuthorID: u.ID, CategoryID: "cat-1",
	})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, domain.CommentDraft{Content: "Hi", AuthorID: u.ID, PostID: post.ID})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, domain.CommentDraft{Content: "Again", AuthorID: u.ID, PostID: post.ID})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PostsCount)
	assert.Equal(t, 2, got.CommentsCount)
}

func TestUserGetMissingIsNotFound(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Get(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = f.svc.GetByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestUserUpdateEmailConflict(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.UserDraft{ID: "sub-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.UserDraft{ID: "sub-2", Email: "b@example.com", Name: "B"})
	require.NoError(t, err)

	taken := "a@example.com"
	_, err = f.svc.Update(ctx, "sub-2", domain.UserPatch{Email: &taken})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	// Re-asserting your own email is not a conflict.
	own := "b@example.com"
	updated, err := f.svc.Update(ctx, "sub-2", domain.UserPatch{Email: &own})
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", updated.Email)
}

func TestUserListPagination(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		_, err := f.svc.Create(ctx, domain.UserDraft{ID: id, Email: id + "@example.com", Name: id})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, ports.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)
}
