package di

import (
	"context"

	"go.uber.org/zap"

	"blog-backend/application/services"
	"blog-backend/domain"
	"blog-backend/infrastructure/config"
	"blog-backend/infrastructure/persistence"
	"blog-backend/interfaces/http/rest"
	"blog-backend/interfaces/http/rest/handlers"
	"blog-backend/pkg/auth"
)

// ProvideLogger creates the process logger. Lambda executions always
// log JSON so CloudWatch gets structured records.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() || cfg.IsLambda {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideRepositories binds the repository family for the configured
// storage provider.
func ProvideRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*persistence.Repositories, error) {
	return persistence.NewRepositories(ctx, cfg, logger)
}

// ProvideJWTValidator creates the token validator. Outside production
// an unset secret falls back to a fixed development value; config
// validation rejects that combination in production.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideNotificationService creates the notification service.
func ProvideNotificationService(repos *persistence.Repositories, logger *zap.Logger) *services.NotificationService {
	return services.NewNotificationService(repos.Notifications, logger)
}

// LikeService and BookmarkService wrap the two relation service
// instances so wire can tell them apart.
type LikeService struct{ *services.RelationService }

type BookmarkService struct{ *services.RelationService }

// ProvideLikeService creates the like relation service, the only one
// wired to fire notifications.
func ProvideLikeService(repos *persistence.Repositories, notifications *services.NotificationService, logger *zap.Logger) LikeService {
	return LikeService{services.NewRelationService(domain.RelationLike, repos.Likes, repos.Posts, repos.Users, notifications, logger)}
}

// ProvideBookmarkService creates the bookmark relation service.
func ProvideBookmarkService(repos *persistence.Repositories, logger *zap.Logger) BookmarkService {
	return BookmarkService{services.NewRelationService(domain.RelationBookmark, repos.Bookmarks, repos.Posts, repos.Users, nil, logger)}
}

// ProvideUserService creates the user service.
func ProvideUserService(repos *persistence.Repositories, logger *zap.Logger) *services.UserService {
	return services.NewUserService(repos.Users, repos.Posts, repos.Comments, logger)
}

// ProvideCategoryService creates the category service.
func ProvideCategoryService(repos *persistence.Repositories, logger *zap.Logger) *services.CategoryService {
	return services.NewCategoryService(repos.Categories, repos.Posts, logger)
}

// ProvidePostService creates the post service.
func ProvidePostService(repos *persistence.Repositories, logger *zap.Logger) *services.PostService {
	return services.NewPostService(repos.Posts, repos.Categories, repos.Comments, repos.Likes, repos.Bookmarks, logger)
}

// ProvideDashboardService creates the dashboard service.
func ProvideDashboardService(repos *persistence.Repositories, logger *zap.Logger) *services.DashboardService {
	return services.NewDashboardService(repos.Posts, repos.Comments, repos.Likes, logger)
}

// ProvideCommentService creates the comment service.
func ProvideCommentService(repos *persistence.Repositories, notifications *services.NotificationService, logger *zap.Logger) *services.CommentService {
	return services.NewCommentService(repos.Comments, repos.Posts, repos.Users, notifications, logger)
}

// ProvideHealthHandler creates the health handler over the bound
// backend's ping.
func ProvideHealthHandler(cfg *config.Config, repos *persistence.Repositories, logger *zap.Logger) *handlers.HealthHandler {
	return handlers.NewHealthHandler(string(cfg.DatabaseProvider), repos.Health, logger)
}

// ProvideRouter creates the HTTP router over the wired services.
func ProvideRouter(
	cfg *config.Config,
	validator *auth.JWTValidator,
	users *services.UserService,
	categories *services.CategoryService,
	posts *services.PostService,
	comments *services.CommentService,
	likes LikeService,
	bookmarks BookmarkService,
	notifications *services.NotificationService,
	dashboard *services.DashboardService,
	health *handlers.HealthHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, validator, users, categories, posts, comments, likes.RelationService, bookmarks.RelationService, notifications, dashboard, health, logger)
}
