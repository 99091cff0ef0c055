package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"blog-backend/application/services"
	"blog-backend/infrastructure/config"
	"blog-backend/interfaces/http/rest/handlers"
	"blog-backend/interfaces/http/rest/middleware"
	"blog-backend/pkg/auth"
)

// Router builds the HTTP handler tree over the application services.
type Router struct {
	cfg           *config.Config
	validator     *auth.JWTValidator
	users         *services.UserService
	categories    *services.CategoryService
	posts         *services.PostService
	comments      *services.CommentService
	likes         *services.RelationService
	bookmarks     *services.RelationService
	notifications *services.NotificationService
	dashboard     *services.DashboardService
	health        *handlers.HealthHandler
	logger        *zap.Logger
}

// NewRouter creates a new router over the wired services.
func NewRouter(
	cfg *config.Config,
	validator *auth.JWTValidator,
	users *services.UserService,
	categories *services.CategoryService,
	posts *services.PostService,
	comments *services.CommentService,
	likes *services.RelationService,
	bookmarks *services.RelationService,
	notifications *services.NotificationService,
	dashboard *services.DashboardService,
	health *handlers.HealthHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		validator:     validator,
		users:         users,
		categories:    categories,
		posts:         posts,
		comments:      comments,
		likes:         likes,
		bookmarks:     bookmarks,
		notifications: notifications,
		dashboard:     dashboard,
		health:        health,
		logger:        logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.health.Live)
	router.Get("/ready", rt.health.Ready)

	maxPage := rt.cfg.MaxPageSize
	userHandler := handlers.NewUserHandler(rt.users, maxPage, rt.logger)
	categoryHandler := handlers.NewCategoryHandler(rt.categories, maxPage, rt.logger)
	postHandler := handlers.NewPostHandler(rt.posts, rt.comments, maxPage, rt.logger)
	commentHandler := handlers.NewCommentHandler(rt.comments, rt.logger)
	likeHandler := handlers.NewRelationHandler(rt.likes, rt.logger)
	bookmarkHandler := handlers.NewRelationHandler(rt.bookmarks, rt.logger)
	notificationHandler := handlers.NewNotificationHandler(rt.notifications, maxPage, rt.logger)
	dashboardHandler := handlers.NewDashboardHandler(rt.dashboard, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))
		r.Use(middleware.RateLimit(auth.NewTokenBucketLimiter(120, time.Second)))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Get("/", userHandler.List)
			r.Get("/me", userHandler.Me)
			r.Get("/{userID}", userHandler.Get)
			r.Put("/{userID}", userHandler.Update)
			r.With(middleware.RequireRole("ADMIN")).Delete("/{userID}", userHandler.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Get("/main", categoryHandler.ListMain)
			r.Get("/slug/{slug}", categoryHandler.GetBySlug)
			r.Get("/{categoryID}", categoryHandler.Get)
			r.Get("/{categoryID}/subcategories", categoryHandler.Subcategories)
			r.With(middleware.RequireRole("ADMIN")).Post("/", categoryHandler.Create)
			r.With(middleware.RequireRole("ADMIN")).Put("/{categoryID}", categoryHandler.Update)
			r.With(middleware.RequireRole("ADMIN")).Delete("/{categoryID}", categoryHandler.Delete)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", postHandler.Create)
			r.Get("/", postHandler.List)
			r.Get("/slug/{slug}", postHandler.GetBySlug)
			r.Get("/{postID}", postHandler.Get)
			r.Put("/{postID}", postHandler.Update)
			r.Delete("/{postID}", postHandler.Delete)
			r.Post("/{postID}/publish", postHandler.Publish)
			r.Post("/{postID}/archive", postHandler.Archive)
			r.Post("/{postID}/revert", postHandler.RevertToDraft)
			r.Post("/{postID}/view", postHandler.RecordView)

			r.Get("/{postID}/comments", postHandler.ListComments)
			r.Post("/{postID}/comments", postHandler.CreateComment)

			r.Post("/{postID}/like", likeHandler.Create)
			r.Delete("/{postID}/like", likeHandler.Remove)
			r.Get("/{postID}/likes", likeHandler.ListByTarget)
			r.Get("/{postID}/likes/count", likeHandler.CountByTarget)

			r.Post("/{postID}/bookmark", bookmarkHandler.Create)
			r.Delete("/{postID}/bookmark", bookmarkHandler.Remove)
			r.Get("/{postID}/bookmarks/count", bookmarkHandler.CountByTarget)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{commentID}", commentHandler.Get)
			r.Get("/{commentID}/replies", commentHandler.Replies)
			r.Put("/{commentID}", commentHandler.Update)
			r.Delete("/{commentID}", commentHandler.Delete)
			r.With(middleware.RequireRole("ADMIN", "MODERATOR")).Post("/{commentID}/approve", commentHandler.Approve)
			r.With(middleware.RequireRole("ADMIN", "MODERATOR")).Post("/{commentID}/reject", commentHandler.Reject)

			r.Post("/{commentID}/like", likeHandler.Create)
			r.Delete("/{commentID}/like", likeHandler.Remove)
			r.Get("/{commentID}/likes/count", likeHandler.CountByTarget)
		})

		r.Get("/likes", likeHandler.ListMine)
		r.Get("/bookmarks", bookmarkHandler.ListMine)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Get("/unread-count", notificationHandler.UnreadCount)
			r.Post("/read-all", notificationHandler.MarkAllRead)
			r.Post("/{notificationID}/read", notificationHandler.MarkRead)
			r.Delete("/{notificationID}", notificationHandler.Delete)
			r.Delete("/", notificationHandler.DeleteAll)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireRole("ADMIN", "AUTHOR"))
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/analytics", dashboardHandler.Analytics)
		})
	})

	return router
}
