package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/infrastructure/persistence/memory"
	"blog-backend/pkg/errors"
)

type postFixture struct {
	categories *memory.CategoryRepository
	comments   *memory.CommentRepository
	likes      *memory.RelationRepository
	bookmarks  *memory.RelationRepository
	svc        *PostService
	categoryID string
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()

	f := &postFixture{
		categories: memory.NewCategoryRepository(),
		comments:   memory.NewCommentRepository(),
		likes:      memory.NewRelationRepository(domain.RelationLike),
		bookmarks:  memory.NewRelationRepository(domain.RelationBookmark),
	}
	f.svc = NewPostService(
		memory.NewPostRepository(),
		f.categories,
		f.comments,
		f.likes,
		f.bookmarks,
		zap.NewNop(),
	)

	cat, err := f.categories.Create(context.Background(), domain.CategoryDraft{Name: "Tech", Slug: "tech"})
	require.NoError(t, err)
	f.categoryID = cat.ID
	return f
}

func (f *postFixture) draft(slug string) domain.PostDraft {
	return domain.PostDraft{
		Title:      "Title " + slug,
		Slug:       slug,
		Content:    json.RawMessage(`{"blocks":[{"type":"paragraph"}]}`),
		AuthorID:   "author-1",
		CategoryID: f.categoryID,
	}
}

func TestPostPublishLifecycleOwnsPublishedAt(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.draft("lifecycle"))
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusDraft, p.Status)
	assert.Nil(t, p.PublishedAt)

	published, err := f.svc.Publish(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	firstPublished := *published.PublishedAt

	// Archiving keeps the original publication time.
	archived, err := f.svc.Archive(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, archived.PublishedAt)
	assert.Equal(t, firstPublished, *archived.PublishedAt)

	// Republishing from archive does not re-stamp it either.
	again, err := f.svc.Publish(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, again.PublishedAt)
	assert.Equal(t, firstPublished, *again.PublishedAt)

	// Reverting to draft clears it.
	reverted, err := f.svc.RevertToDraft(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, reverted.PublishedAt)
}

func TestPostUpdateCannotTouchPublishedAt(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.draft("frozen"))
	require.NoError(t, err)

	sneaky := time.Now().UTC()
	title := "Renamed"
	updated, err := f.svc.Update(ctx, p.ID, domain.PostPatch{Title: &title, PublishedAt: &sneaky})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Nil(t, updated.PublishedAt)
}

func TestPostCreatePublishedStampsPublication(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	d := f.draft("straight-to-published")
	d.Status = domain.PostStatusPublished

	p, err := f.svc.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusPublished, p.Status)
	assert.NotNil(t, p.PublishedAt)
}

func TestPostSlugMustBeUnique(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.draft("taken"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.draft("taken"))
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestPostSubcategoryMustBelongToCategory(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	other, err := f.categories.Create(ctx, domain.CategoryDraft{Name: "Life", Slug: "life"})
	require.NoError(t, err)
	stranger, err := f.categories.Create(ctx, domain.CategoryDraft{Name: "Travel", Slug: "travel", ParentID: &other.ID})
	require.NoError(t, err)

	d := f.draft("mismatched")
	d.SubcategoryID = &stranger.ID
	_, err = f.svc.Create(ctx, d)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestPostViewsSurviveUpdates(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.draft("viewed"))
	require.NoError(t, err)

	require.NoError(t, f.svc.RecordView(ctx, p.ID))
	require.NoError(t, f.svc.RecordView(ctx, p.ID))

	title := "Still viewed"
	_, err = f.svc.Update(ctx, p.ID, domain.PostPatch{Title: &title})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestPublishedPostAccumulatesEngagement(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.draft("engaging"))
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.likes.Create(ctx, domain.RelationDraft{
		UserID: "reader-1",
		Target: domain.TargetRef{Kind: domain.TargetPost, ID: p.ID},
	})
	require.NoError(t, err)
	_, err = f.bookmarks.Create(ctx, domain.RelationDraft{
		UserID: "reader-2",
		Target: domain.TargetRef{Kind: domain.TargetPost, ID: p.ID},
	})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, domain.CommentDraft{
		Content: "Nice one", AuthorID: "reader-1", PostID: p.ID,
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 1, got.BookmarksCount)
	assert.Equal(t, 1, got.CommentsCount)
}

func TestPostListFilters(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.draft("first"))
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.draft("second"))
	require.NoError(t, err)

	page, err := f.svc.List(ctx, ports.PostListFilter{Status: domain.PostStatusPublished}, ports.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "first", page.Items[0].Slug)
}
