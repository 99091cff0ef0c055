package dynamodb

import (
	"context"
	"sort"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

const entityUser = "USER"

// userItem is the single-table record shape for a user.
type userItem struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	GSI1PK     string    `dynamodbav:"GSI1PK,omitempty"`
	EntityType string    `dynamodbav:"EntityType"`
	ID         string    `dynamodbav:"ID"`
	Email      string    `dynamodbav:"Email"`
	Name       string    `dynamodbav:"Name"`
	Role       string    `dynamodbav:"Role"`
	IsActive   bool      `dynamodbav:"IsActive"`
	IsBanned   bool      `dynamodbav:"IsBanned"`
	BanReason  string    `dynamodbav:"BanReason,omitempty"`
	Bio        string    `dynamodbav:"Bio,omitempty"`
	AvatarURL  string    `dynamodbav:"AvatarURL,omitempty"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt  time.Time `dynamodbav:"UpdatedAt"`
}

func newUserItem(u *domain.User) userItem {
	item := userItem{
		PK:         entityPK(entityUser, u.ID),
		SK:         metadataSK,
		EntityType: entityUser,
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		IsBanned:   u.IsBanned,
		BanReason:  u.BanReason,
		Bio:        u.Bio,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.Email != "" {
		item.GSI1PK = "EMAIL#" + u.Email
	}
	return item
}

func (i userItem) toDomain() *domain.User {
	return &domain.User{
		ID:        i.ID,
		Email:     i.Email,
		Name:      i.Name,
		Role:      domain.Role(i.Role),
		IsActive:  i.IsActive,
		IsBanned:  i.IsBanned,
		BanReason: i.BanReason,
		Bio:       i.Bio,
		AvatarURL: i.AvatarURL,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// UserRepository is the DynamoDB implementation of ports.UserRepository.
type UserRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewUserRepository creates a DynamoDB-backed user repository.
func NewUserRepository(store *Store, logger *zap.Logger) *UserRepository {
	return &UserRepository{store: store, logger: logger}
}

// Create writes the user record, rejecting duplicate ids.
func (r *UserRepository) Create(ctx context.Context, draft domain.UserDraft) (*domain.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        draft.ID,
		Email:     draft.Email,
		Name:      draft.Name,
		Role:      draft.Role,
		IsActive:  true,
		Bio:       draft.Bio,
		AvatarURL: draft.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	av, err := attributevalue.MarshalMap(newUserItem(user))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal user")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, apperrors.NewConflictError("user already exists").WithCause(err)
		}
		return nil, r.store.translate("PutItem", err)
	}

	r.logger.Debug("user created", zap.String("user_id", user.ID))
	return user, nil
}

// FindByID returns the user or (nil, nil) when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	out, err := r.store.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.Table),
		Key:       entityKey(entityUser, id),
	})
	if err != nil {
		return nil, r.store.translate("GetItem", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal user")
	}
	return item.toDomain(), nil
}

// FindByEmail looks the user up through the email index.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("EMAIL#" + email))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build email query")
	}

	items, err := r.store.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.Table),
		IndexName:                 aws.String(r.store.GSI1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, r.store.translate("Query", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(items[0], &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal user")
	}
	return item.toDomain(), nil
}

// List scans the user partition and pages in-process, newest first.
func (r *UserRepository) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.User], error) {
	opts.Normalize()

	users, err := r.scanUsers(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(a, b int) bool {
		return users[a].CreatedAt.After(users[b].CreatedAt)
	})

	return pageOf(users, opts), nil
}

func (r *UserRepository) scanUsers(ctx context.Context) ([]*domain.User, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(entityUser))
	expr, err := expression.NewBuilder().WithFilter(filt).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build user scan")
	}

	raw, err := r.store.scanAll(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.store.Table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, r.store.translate("Scan", err)
	}

	users := make([]*domain.User, 0, len(raw))
	for _, m := range raw {
		var item userItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, apperrors.Wrap(err, "unmarshal user")
		}
		users = append(users, item.toDomain())
	}
	return users, nil
}

// Update reads, patches, and conditionally writes the record back.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user")
	}

	if err := patch.Apply(user); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()

	av, err := attributevalue.MarshalMap(newUserItem(user))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal user")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, r.store.translate("PutItem", err)
	}
	return user, nil
}

// Delete removes the record, failing when the id is unknown.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.store.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.store.Table),
		Key:                 entityKey(entityUser, id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("user")
		}
		return r.store.translate("DeleteItem", err)
	}
	return nil
}
