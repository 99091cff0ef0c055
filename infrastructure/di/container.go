// Package di wires the application together with google/wire. The
// provider selection for the storage backend happens once, inside
// ProvideRepositories; everything downstream depends on the contracts
// only.
package di

import (
	"go.uber.org/zap"

	"blog-backend/application/services"
	"blog-backend/infrastructure/config"
	"blog-backend/infrastructure/persistence"
	"blog-backend/interfaces/http/rest"
)

// Container holds the wired application.
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Repositories  *persistence.Repositories
	Users         *services.UserService
	Categories    *services.CategoryService
	Posts         *services.PostService
	Comments      *services.CommentService
	Likes         LikeService
	Bookmarks     BookmarkService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService
	Router        *rest.Router
}

// Close flushes the logger and releases backend resources.
func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
