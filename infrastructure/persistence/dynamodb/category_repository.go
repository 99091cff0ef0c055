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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	entityCategory = "CATEGORY"
	// rootParent is the GSI2 bucket for categories with no parent, so
	// ListMain is an index query, not a scan.
	rootParent = "ROOT"
)

type categoryItem struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	GSI1PK     string    `dynamodbav:"GSI1PK"`
	GSI2PK     string    `dynamodbav:"GSI2PK"`
	EntityType string    `dynamodbav:"EntityType"`
	ID         string    `dynamodbav:"ID"`
	Name       string    `dynamodbav:"Name"`
	Slug       string    `dynamodbav:"Slug"`
	ParentID   *string   `dynamodbav:"ParentID,omitempty"`
	IsActive   bool      `dynamodbav:"IsActive"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt  time.Time `dynamodbav:"UpdatedAt"`
}

func newCategoryItem(c *domain.Category) categoryItem {
	parent := rootParent
	if c.ParentID != nil {
		parent = *c.ParentID
	}
	return categoryItem{
		PK:         entityPK(entityCategory, c.ID),
		SK:         metadataSK,
		GSI1PK:     "CATSLUG#" + c.Slug,
		GSI2PK:     "CATPARENT#" + parent,
		EntityType: entityCategory,
		ID:         c.ID,
		Name:       c.Name,
		Slug:       c.Slug,
		ParentID:   c.ParentID,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (i categoryItem) toDomain() *domain.Category {
	return &domain.Category{
		ID:        i.ID,
		Name:      i.Name,
		Slug:      i.Slug,
		ParentID:  i.ParentID,
		IsActive:  i.IsActive,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// CategoryRepository is the DynamoDB implementation of
// ports.CategoryRepository.
type CategoryRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewCategoryRepository creates a DynamoDB-backed category repository.
func NewCategoryRepository(store *Store, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{store: store, logger: logger}
}

// Create writes a new category with a generated id.
func (r *CategoryRepository) Create(ctx context.Context, draft domain.CategoryDraft) (*domain.Category, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      draft.Name,
		Slug:      draft.Slug,
		ParentID:  draft.ParentID,
		IsActive:  draft.Active(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	av, err := attributevalue.MarshalMap(newCategoryItem(category))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal category")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, r.store.translate("PutItem", err)
	}

	r.logger.Debug("category created", zap.String("category_id", category.ID))
	return category, nil
}

// FindByID returns the category or (nil, nil) when absent.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	out, err := r.store.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.Table),
		Key:       entityKey(entityCategory, id),
	})
	if err != nil {
		return nil, r.store.translate("GetItem", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item categoryItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal category")
	}
	return item.toDomain(), nil
}

// FindBySlug looks the category up through the slug index.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	items, err := r.queryIndex(ctx, r.store.GSI1, "GSI1PK", "CATSLUG#"+slug)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// FindByParent returns the direct children of a category.
func (r *CategoryRepository) FindByParent(ctx context.Context, parentID string) ([]*domain.Category, error) {
	return r.queryIndex(ctx, r.store.GSI2, "GSI2PK", "CATPARENT#"+parentID)
}

// ListMain returns the categories with no parent.
func (r *CategoryRepository) ListMain(ctx context.Context) ([]*domain.Category, error) {
	return r.queryIndex(ctx, r.store.GSI2, "GSI2PK", "CATPARENT#"+rootParent)
}

func (r *CategoryRepository) queryIndex(ctx context.Context, index, keyName, keyValue string) ([]*domain.Category, error) {
	keyCond := expression.Key(keyName).Equal(expression.Value(keyValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build category query")
	}

	raw, err := r.store.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.Table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, r.store.translate("Query", err)
	}
	return unmarshalCategories(raw)
}

// List scans the category partition and pages in-process by name.
func (r *CategoryRepository) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.Category], error) {
	opts.Normalize()

	filt := expression.Name("EntityType").Equal(expression.Value(entityCategory))
	expr, err := expression.NewBuilder().WithFilter(filt).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build category scan")
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

	categories, err := unmarshalCategories(raw)
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(a, b int) bool {
		return categories[a].Name < categories[b].Name
	})
	return pageOf(categories, opts), nil
}

// Update reads, patches, and conditionally writes the record back.
func (r *CategoryRepository) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	category, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperrors.NewNotFoundError("category")
	}

	if err := patch.Apply(category); err != nil {
		return nil, err
	}
	category.UpdatedAt = time.Now().UTC()

	av, err := attributevalue.MarshalMap(newCategoryItem(category))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal category")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, apperrors.NewNotFoundError("category")
		}
		return nil, r.store.translate("PutItem", err)
	}
	return category, nil
}

// Delete removes the record, failing when the id is unknown.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.store.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.store.Table),
		Key:                 entityKey(entityCategory, id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("category")
		}
		return r.store.translate("DeleteItem", err)
	}
	return nil
}

func unmarshalCategories(raw []map[string]types.AttributeValue) ([]*domain.Category, error) {
	categories := make([]*domain.Category, 0, len(raw))
	for _, m := range raw {
		var item categoryItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, apperrors.Wrap(err, "unmarshal category")
		}
		categories = append(categories, item.toDomain())
	}
	return categories, nil
}
