package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// The stubs below embed the repository interface so only the reads
// the dashboard performs need an implementation.

type stubPosts struct {
	ports.PostRepository
	posts []*domain.Post
}

func (s *stubPosts) FindByStatus(_ context.Context, status domain.PostStatus) ([]*domain.Post, error) {
	var out []*domain.Post
	for _, p := range s.posts {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubComments struct {
	ports.CommentRepository
	comments []*domain.Comment
}

func (s *stubComments) FindApprovedSince(_ context.Context, since time.Time) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, c := range s.comments {
		if c.IsApproved && !c.CreatedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubLikes struct {
	ports.RelationRepository
	relations []*domain.Relation
}

func (s *stubLikes) FindCreatedSince(_ context.Context, since time.Time) ([]*domain.Relation, error) {
	var out []*domain.Relation
	for _, r := range s.relations {
		if !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func newDashboard(posts *stubPosts, comments *stubComments, likes *stubLikes, ref time.Time) *DashboardService {
	svc := NewDashboardService(posts, comments, likes, zap.NewNop())
	svc.clock = func() time.Time { return ref }
	return svc
}

func publishedPost(id string, createdDaysAgo int, views int, ref time.Time) *domain.Post {
	created := ref.AddDate(0, 0, -createdDaysAgo)
	return &domain.Post{
		ID:          id,
		Status:      domain.PostStatusPublished,
		Views:       views,
		CreatedAt:   created,
		PublishedAt: &created,
	}
}

func likeOn(postID string, createdDaysAgo int, ref time.Time) *domain.Relation {
	return &domain.Relation{
		ID:        "u#LIKE#" + postID,
		UserID:    "u",
		PostID:    &postID,
		CreatedAt: ref.AddDate(0, 0, -createdDaysAgo),
	}
}

func TestGetStatsWindowedChanges(t *testing.T) {
	ref := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	posts := &stubPosts{posts: []*domain.Post{
		publishedPost("old", 40, 100, ref),
		publishedPost("new", 10, 50, ref),
		{ID: "hidden", Status: domain.PostStatusDraft, Views: 999, CreatedAt: ref.AddDate(0, 0, -5)},
	}}
	likes := &stubLikes{relations: []*domain.Relation{
		likeOn("new", 5, ref),
		likeOn("hidden", 5, ref), // draft post, ignored
	}}
	comments := &stubComments{comments: []*domain.Comment{
		{ID: "c1", PostID: "old", IsApproved: true, CreatedAt: ref.AddDate(0, 0, -35)},
		{ID: "c2", PostID: "old", IsApproved: false, CreatedAt: ref.AddDate(0, 0, -3)},
	}}

	svc := newDashboard(posts, comments, likes, ref)
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalPosts)
	assert.Equal(t, 150, stats.TotalViews)
	assert.Equal(t, 1, stats.TotalLikes)
	assert.Equal(t, 1, stats.TotalComments)

	// One post in each 30-day window: no change.
	assert.Equal(t, 0.0, stats.PostsChange)
	// 50 views attributed to the current window vs 100 before.
	assert.Equal(t, -50.0, stats.ViewsChange)
	// A like appearing out of an empty previous window is +100%.
	assert.Equal(t, 100.0, stats.LikesChange)
	// The only approved comment sits in the previous window.
	assert.Equal(t, -100.0, stats.CommentsChange)
}

func TestGetStatsEmptyRepositories(t *testing.T) {
	svc := newDashboard(&stubPosts{}, &stubComments{}, &stubLikes{}, time.Now().UTC())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPosts)
	assert.Zero(t, stats.TotalViews)
	assert.Zero(t, stats.PostsChange)
	assert.Zero(t, stats.ViewsChange)
	assert.Zero(t, stats.LikesChange)
	assert.Zero(t, stats.CommentsChange)
}

func TestGetAnalyticsCoversEveryDayOfPeriod(t *testing.T) {
	ref := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	posts := &stubPosts{posts: []*domain.Post{
		publishedPost("p1", 3, 10, ref),
	}}
	likes := &stubLikes{relations: []*domain.Relation{
		likeOn("p1", 1, ref),
	}}
	comments := &stubComments{comments: []*domain.Comment{
		{ID: "c1", PostID: "p1", IsApproved: true, CreatedAt: ref.AddDate(0, 0, -1)},
	}}

	svc := newDashboard(posts, comments, likes, ref)
	analytics, err := svc.GetAnalytics(context.Background(), Period7d)
	require.NoError(t, err)

	require.Len(t, analytics.Views, 7)
	require.Len(t, analytics.Engagement, 7)

	// Buckets run oldest first and end today.
	assert.Equal(t, "2026-03-09", analytics.Views[0].Date)
	assert.Equal(t, "2026-03-15", analytics.Views[6].Date)
	for i := 1; i < 7; i++ {
		prev, err := time.Parse("2006-01-02", analytics.Views[i-1].Date)
		require.NoError(t, err)
		assert.Equal(t, prev.AddDate(0, 0, 1).Format("2006-01-02"), analytics.Views[i].Date)
	}

	// The post's views land on its creation day, likes and comments
	// on theirs; the unique-views estimate is 70% rounded down.
	assert.Equal(t, 10, analytics.Views[3].Views)
	assert.Equal(t, 7, analytics.Views[3].UniqueViews)
	assert.Equal(t, 1, analytics.Engagement[5].Likes)
	assert.Equal(t, 1, analytics.Engagement[5].Comments)

	// Every other day stays in the series as a zero point.
	assert.Zero(t, analytics.Views[0].Views)
	assert.Zero(t, analytics.Engagement[0].Likes)
}

func TestGetAnalyticsEmptyWindowIsAllZeroes(t *testing.T) {
	svc := newDashboard(&stubPosts{}, &stubComments{}, &stubLikes{}, time.Now().UTC())

	analytics, err := svc.GetAnalytics(context.Background(), Period30d)
	require.NoError(t, err)
	require.Len(t, analytics.Views, 30)
	for _, p := range analytics.Views {
		assert.Zero(t, p.Views)
		assert.Zero(t, p.UniqueViews)
	}
}

func TestGetAnalyticsPeriodValidation(t *testing.T) {
	svc := newDashboard(&stubPosts{}, &stubComments{}, &stubLikes{}, time.Now().UTC())
	ctx := context.Background()

	// Empty defaults to 30 days.
	analytics, err := svc.GetAnalytics(ctx, "")
	require.NoError(t, err)
	assert.Len(t, analytics.Views, 30)

	_, err = svc.GetAnalytics(ctx, AnalyticsPeriod("365d"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
