// Package persistence binds one storage driver family to the entity
// repository contracts at startup.
package persistence

import (
	"context"
	"fmt"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/infrastructure/config"
	dynamostore "blog-backend/infrastructure/persistence/dynamodb"
	"blog-backend/infrastructure/persistence/surreal"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// Pinger reports backend reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Repositories is the full set of bound repository contracts. Every
// field comes from the same driver family; callers never learn which.
type Repositories struct {
	Users         ports.UserRepository
	Categories    ports.CategoryRepository
	Posts         ports.PostRepository
	Comments      ports.CommentRepository
	Likes         ports.RelationRepository
	Bookmarks     ports.RelationRepository
	Notifications ports.NotificationRepository

	Health Pinger
}

// NewRepositories selects the driver family named by the
// configuration. An unrecognized provider was already rejected by
// config validation, so the default arm only guards against a
// missed code path.
func NewRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Repositories, error) {
	switch cfg.DatabaseProvider {
	case config.ProviderDynamoDB:
		return newDynamoRepositories(ctx, cfg, logger)
	case config.ProviderSurrealDB:
		return newSurrealRepositories(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database provider %q", cfg.DatabaseProvider)
	}
}

func newDynamoRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Repositories, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg)
	store := dynamostore.NewStore(client, cfg, logger)

	logger.Info("storage provider selected",
		zap.String("provider", string(config.ProviderDynamoDB)),
		zap.String("table", cfg.DynamoDBTable),
	)

	return &Repositories{
		Users:         dynamostore.NewUserRepository(store, logger),
		Categories:    dynamostore.NewCategoryRepository(store, logger),
		Posts:         dynamostore.NewPostRepository(store, logger),
		Comments:      dynamostore.NewCommentRepository(store, logger),
		Likes:         dynamostore.NewRelationRepository(store, domain.RelationLike, logger),
		Bookmarks:     dynamostore.NewRelationRepository(store, domain.RelationBookmark, logger),
		Notifications: dynamostore.NewNotificationRepository(store, logger),
		Health:        store,
	}, nil
}

func newSurrealRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Repositories, error) {
	store := surreal.NewStore(cfg, logger)
	// Dial in the background; the first request retries through the
	// breaker if this fails.
	store.Warm(ctx)

	logger.Info("storage provider selected",
		zap.String("provider", string(config.ProviderSurrealDB)),
		zap.String("url", cfg.SurrealURL),
	)

	return &Repositories{
		Users:         surreal.NewUserRepository(store, logger),
		Categories:    surreal.NewCategoryRepository(store, logger),
		Posts:         surreal.NewPostRepository(store, logger),
		Comments:      surreal.NewCommentRepository(store, logger),
		Likes:         surreal.NewRelationRepository(store, domain.RelationLike, logger),
		Bookmarks:     surreal.NewRelationRepository(store, domain.RelationBookmark, logger),
		Notifications: surreal.NewNotificationRepository(store, logger),
		Health:        store,
	}, nil
}
