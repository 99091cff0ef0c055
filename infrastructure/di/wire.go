//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"blog-backend/infrastructure/config"
)

// SuperSet is the main provider set.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideRepositories,
	ProvideJWTValidator,
	ProvideNotificationService,
	ProvideLikeService,
	ProvideBookmarkService,
	ProvideUserService,
	ProvideCategoryService,
	ProvidePostService,
	ProvideCommentService,
	ProvideDashboardService,
	ProvideHealthHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // wire fills this in
}
