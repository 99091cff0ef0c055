package dynamodb

import (
	"context"
	"encoding/json"
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

const entityPost = "POST"

// postItem stores the post body as a JSON string; the document is
// opaque to the storage layer. Denormalized interaction counters are
// not persisted here, they are recomputed at read time by the
// services that own them. Views is the exception: it is a stored
// counter with IncrementViews as its single writer.
type postItem struct {
	PK            string     `dynamodbav:"PK"`
	SK            string     `dynamodbav:"SK"`
	GSI1PK        string     `dynamodbav:"GSI1PK"`
	GSI2PK        string     `dynamodbav:"GSI2PK"`
	EntityType    string     `dynamodbav:"EntityType"`
	ID            string     `dynamodbav:"ID"`
	Title         string     `dynamodbav:"Title"`
	Slug          string     `dynamodbav:"Slug"`
	Content       string     `dynamodbav:"Content"`
	AuthorID      string     `dynamodbav:"AuthorID"`
	CategoryID    string     `dynamodbav:"CategoryID"`
	SubcategoryID *string    `dynamodbav:"SubcategoryID,omitempty"`
	Status        string     `dynamodbav:"Status"`
	PublishedAt   *time.Time `dynamodbav:"PublishedAt,omitempty"`
	Views         int        `dynamodbav:"Views"`
	CreatedAt     time.Time  `dynamodbav:"CreatedAt"`
	UpdatedAt     time.Time  `dynamodbav:"UpdatedAt"`
}

func newPostItem(p *domain.Post) postItem {
	return postItem{
		PK:            entityPK(entityPost, p.ID),
		SK:            metadataSK,
		GSI1PK:        "SLUG#" + p.Slug,
		GSI2PK:        "AUTHOR#" + p.AuthorID,
		EntityType:    entityPost,
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       string(p.Content),
		AuthorID:      p.AuthorID,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		Status:        string(p.Status),
		PublishedAt:   p.PublishedAt,
		Views:         p.Views,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (i postItem) toDomain() *domain.Post {
	return &domain.Post{
		ID:            i.ID,
		Title:         i.Title,
		Slug:          i.Slug,
		Content:       json.RawMessage(i.Content),
		AuthorID:      i.AuthorID,
		CategoryID:    i.CategoryID,
		SubcategoryID: i.SubcategoryID,
		Status:        domain.PostStatus(i.Status),
		PublishedAt:   i.PublishedAt,
		Views:         i.Views,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// PostRepository is the DynamoDB implementation of ports.PostRepository.
type PostRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewPostRepository creates a DynamoDB-backed post repository.
func NewPostRepository(store *Store, logger *zap.Logger) *PostRepository {
	return &PostRepository{store: store, logger: logger}
}

// Create writes a new post with a generated id.
func (r *PostRepository) Create(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:            uuid.New().String(),
		Title:         draft.Title,
		Slug:          draft.Slug,
		Content:       draft.Content,
		AuthorID:      draft.AuthorID,
		CategoryID:    draft.CategoryID,
		SubcategoryID: draft.SubcategoryID,
		Status:        draft.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.Status == domain.PostStatusPublished {
		post.PublishedAt = &now
	}

	av, err := attributevalue.MarshalMap(newPostItem(post))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal post")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, r.store.translate("PutItem", err)
	}

	r.logger.Debug("post created",
		zap.String("post_id", post.ID),
		zap.String("status", string(post.Status)),
	)
	return post, nil
}

// FindByID returns the post or (nil, nil) when absent.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	out, err := r.store.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.Table),
		Key:       entityKey(entityPost, id),
	})
	if err != nil {
		return nil, r.store.translate("GetItem", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item postItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal post")
	}
	return item.toDomain(), nil
}

// FindBySlug looks the post up through the slug index.
func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	posts, err := r.queryIndex(ctx, r.store.GSI1, "GSI1PK", "SLUG#"+slug)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return posts[0], nil
}

// FindByAuthor returns the author's posts through the author index.
func (r *PostRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	return r.queryIndex(ctx, r.store.GSI2, "GSI2PK", "AUTHOR#"+authorID)
}

// FindByStatus scans for posts in the given status.
func (r *PostRepository) FindByStatus(ctx context.Context, status domain.PostStatus) ([]*domain.Post, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(entityPost)).
		And(expression.Name("Status").Equal(expression.Value(string(status))))
	return r.scanPosts(ctx, filt)
}

// List scans the post partition, applies the filter, and pages
// in-process, newest first.
func (r *PostRepository) List(ctx context.Context, filter ports.PostListFilter, opts ports.ListOptions) (*ports.Page[domain.Post], error) {
	opts.Normalize()

	filt := expression.Name("EntityType").Equal(expression.Value(entityPost))
	if filter.Status != "" {
		filt = filt.And(expression.Name("Status").Equal(expression.Value(string(filter.Status))))
	}
	if filter.AuthorID != "" {
		filt = filt.And(expression.Name("AuthorID").Equal(expression.Value(filter.AuthorID)))
	}
	if filter.CategoryID != "" {
		filt = filt.And(expression.Name("CategoryID").Equal(expression.Value(filter.CategoryID)))
	}

	posts, err := r.scanPosts(ctx, filt)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(a, b int) bool {
		return posts[a].CreatedAt.After(posts[b].CreatedAt)
	})
	return pageOf(posts, opts), nil
}

func (r *PostRepository) queryIndex(ctx context.Context, index, keyName, keyValue string) ([]*domain.Post, error) {
	keyCond := expression.Key(keyName).Equal(expression.Value(keyValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build post query")
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
	return unmarshalPosts(raw)
}

func (r *PostRepository) scanPosts(ctx context.Context, filt expression.ConditionBuilder) ([]*domain.Post, error) {
	expr, err := expression.NewBuilder().WithFilter(filt).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build post scan")
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
	return unmarshalPosts(raw)
}

// Update reads, patches, and conditionally writes the record back.
// Views is not written here, it belongs to IncrementViews.
func (r *PostRepository) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	post, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NewNotFoundError("post")
	}

	if err := patch.Apply(post); err != nil {
		return nil, err
	}
	post.UpdatedAt = time.Now().UTC()

	av, err := attributevalue.MarshalMap(newPostItem(post))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal post")
	}
	// The read-modify-write cycle must not rewind a concurrent view
	// count bump, so the stored Views attribute is kept out of the
	// replacement item and preserved in place.
	delete(av, "Views")

	update := expression.Set(expression.Name("UpdatedAt"), expression.Value(post.UpdatedAt))
	for name, value := range av {
		if name == "PK" || name == "SK" || name == "UpdatedAt" {
			continue
		}
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	if post.PublishedAt == nil {
		update = update.Remove(expression.Name("PublishedAt"))
	}
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build post update")
	}

	out, err := r.store.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.store.Table),
		Key:                       entityKey(entityPost, id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, apperrors.NewNotFoundError("post")
		}
		return nil, r.store.translate("UpdateItem", err)
	}

	var item postItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal post")
	}
	return item.toDomain(), nil
}

// IncrementViews bumps the view counter atomically.
func (r *PostRepository) IncrementViews(ctx context.Context, id string) error {
	update := expression.Add(expression.Name("Views"), expression.Value(1))
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return apperrors.Wrap(err, "build views update")
	}

	_, err = r.store.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.store.Table),
		Key:                       entityKey(entityPost, id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("post")
		}
		return r.store.translate("UpdateItem", err)
	}
	return nil
}

// Delete removes the record, failing when the id is unknown.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	_, err := r.store.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.store.Table),
		Key:                 entityKey(entityPost, id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("post")
		}
		return r.store.translate("DeleteItem", err)
	}
	return nil
}

func unmarshalPosts(raw []map[string]types.AttributeValue) ([]*domain.Post, error) {
	posts := make([]*domain.Post, 0, len(raw))
	for _, m := range raw {
		var item postItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, apperrors.Wrap(err, "unmarshal post")
		}
		posts = append(posts, item.toDomain())
	}
	return posts, nil
}
