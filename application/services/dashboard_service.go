package services

import (
	"context"
	"math"
	"time"

	"github.com/jinzhu/now"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// AnalyticsPeriod selects the analytics window length.
type AnalyticsPeriod string

const (
	Period7d  AnalyticsPeriod = "7d"
	Period30d AnalyticsPeriod = "30d"
	Period90d AnalyticsPeriod = "90d"
)

// Days returns the number of calendar days the period covers.
func (p AnalyticsPeriod) Days() int {
	switch p {
	case Period7d:
		return 7
	case Period90d:
		return 90
	default:
		return 30
	}
}

// IsValid reports whether the period is one of the known values.
func (p AnalyticsPeriod) IsValid() bool {
	return p == Period7d || p == Period30d || p == Period90d
}

// DashboardStats are the headline figures for published content. Each
// Change field compares the last 30 days against the 30 days before,
// as a percentage rounded to one decimal.
type DashboardStats struct {
	TotalPosts     int     `json:"totalPosts"`
	TotalViews     int     `json:"totalViews"`
	TotalLikes     int     `json:"totalLikes"`
	TotalComments  int     `json:"totalComments"`
	PostsChange    float64 `json:"postsChange"`
	ViewsChange    float64 `json:"viewsChange"`
	LikesChange    float64 `json:"likesChange"`
	CommentsChange float64 `json:"commentsChange"`
}

// ViewsPoint is one calendar day of view traffic.
type ViewsPoint struct {
	Date        string `json:"date"`
	Views       int    `json:"views"`
	UniqueViews int    `json:"uniqueViews"`
}

// EngagementPoint is one calendar day of likes and comments.
type EngagementPoint struct {
	Date     string `json:"date"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
}

// DashboardAnalytics holds the per-day time series for a period.
type DashboardAnalytics struct {
	Views      []ViewsPoint      `json:"views"`
	Engagement []EngagementPoint `json:"engagement"`
}

// DashboardService aggregates published-content figures across the
// repositories. Only published posts count, and only likes and
// approved comments attached to them.
type DashboardService struct {
	posts    ports.PostRepository
	comments ports.CommentRepository
	likes    ports.RelationRepository
	logger   *zap.Logger

	// clock is swapped in tests; defaults to time.Now.
	clock func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	posts ports.PostRepository,
	comments ports.CommentRepository,
	likes ports.RelationRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		posts:    posts,
		comments: comments,
		likes:    likes,
		logger:   logger,
		clock:    time.Now,
	}
}

// GetStats returns the headline figures and their period-over-period
// change. All four deltas are computed the same way, from two
// adjacent 30-day windows.
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	published, err := s.posts.FindByStatus(ctx, domain.PostStatusPublished)
	if err != nil {
		return nil, err
	}

	publishedIDs := make(map[string]bool, len(published))
	totalViews := 0
	for _, p := range published {
		publishedIDs[p.ID] = true
		totalViews += p.Views
	}

	ref := s.clock().UTC()
	windowStart := ref.AddDate(0, 0, -30)
	prevStart := ref.AddDate(0, 0, -60)

	var curPosts, prevPosts, curViews, prevViews int
	for _, p := range published {
		switch {
		case !p.CreatedAt.Before(windowStart):
			curPosts++
			curViews += p.Views
		case !p.CreatedAt.Before(prevStart):
			prevPosts++
			prevViews += p.Views
		}
	}

	// Likes and comments carry their own creation time, so both
	// windows come from one since-read over the older boundary.
	likes, err := s.likes.FindCreatedSince(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	totalLikes := 0
	var curLikes, prevLikes int
	for _, l := range likes {
		if l.PostID == nil || !publishedIDs[*l.PostID] {
			continue
		}
		totalLikes++
		switch {
		case !l.CreatedAt.Before(windowStart):
			curLikes++
		case !l.CreatedAt.Before(prevStart):
			prevLikes++
		}
	}

	comments, err := s.comments.FindApprovedSince(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	totalComments := 0
	var curComments, prevComments int
	for _, c := range comments {
		if !publishedIDs[c.PostID] {
			continue
		}
		totalComments++
		switch {
		case !c.CreatedAt.Before(windowStart):
			curComments++
		case !c.CreatedAt.Before(prevStart):
			prevComments++
		}
	}

	return &DashboardStats{
		TotalPosts:     len(published),
		TotalViews:     totalViews,
		TotalLikes:     totalLikes,
		TotalComments:  totalComments,
		PostsChange:    changePct(curPosts, prevPosts),
		ViewsChange:    changePct(curViews, prevViews),
		LikesChange:    changePct(curLikes, prevLikes),
		CommentsChange: changePct(curComments, prevComments),
	}, nil
}

// changePct compares a window to the previous one as a percentage
// rounded to one decimal. A figure appearing out of nothing is +100%;
// nothing in either window is 0%.
func changePct(cur, prev int) float64 {
	switch {
	case prev > 0:
		return math.Round((float64(cur-prev)/float64(prev))*100*10) / 10
	case cur > 0:
		return 100
	default:
		return 0
	}
}

// GetAnalytics returns per-day series covering exactly the period's
// calendar days, oldest first, ending today. Days without activity
// stay in the series as zero points.
func (s *DashboardService) GetAnalytics(ctx context.Context, period AnalyticsPeriod) (*DashboardAnalytics, error) {
	if period == "" {
		period = Period30d
	}
	if !period.IsValid() {
		return nil, errors.NewValidationError("unknown analytics period: " + string(period))
	}
	days := period.Days()

	today := now.New(s.clock().UTC()).BeginningOfDay()
	start := today.AddDate(0, 0, -(days - 1))

	published, err := s.posts.FindByStatus(ctx, domain.PostStatusPublished)
	if err != nil {
		return nil, err
	}
	publishedIDs := make(map[string]bool, len(published))
	viewsByDay := make(map[string]int)
	for _, p := range published {
		publishedIDs[p.ID] = true
		// Views attribute to the post's creation day; there is no
		// per-view event stream to bucket by.
		if !p.CreatedAt.Before(start) {
			viewsByDay[dayKey(p.CreatedAt)] += p.Views
		}
	}

	likes, err := s.likes.FindCreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	likesByDay := make(map[string]int)
	for _, l := range likes {
		if l.PostID != nil && publishedIDs[*l.PostID] {
			likesByDay[dayKey(l.CreatedAt)]++
		}
	}

	comments, err := s.comments.FindApprovedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	commentsByDay := make(map[string]int)
	for _, c := range comments {
		if publishedIDs[c.PostID] {
			commentsByDay[dayKey(c.CreatedAt)]++
		}
	}

	analytics := &DashboardAnalytics{
		Views:      make([]ViewsPoint, 0, days),
		Engagement: make([]EngagementPoint, 0, days),
	}
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		views := viewsByDay[date]
		analytics.Views = append(analytics.Views, ViewsPoint{
			Date:        date,
			Views:       views,
			UniqueViews: int(math.Floor(float64(views) * 0.7)),
		})
		analytics.Engagement = append(analytics.Engagement, EngagementPoint{
			Date:     date,
			Likes:    likesByDay[date],
			Comments: commentsByDay[date],
		})
	}
	return analytics, nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
