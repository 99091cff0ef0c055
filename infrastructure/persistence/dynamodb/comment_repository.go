package dynamodb

import (
	"context"
	"time"

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

const entityComment = "COMMENT"

type commentItem struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	GSI1PK     string    `dynamodbav:"GSI1PK"`
	GSI2PK     string    `dynamodbav:"GSI2PK"`
	EntityType string    `dynamodbav:"EntityType"`
	ID         string    `dynamodbav:"ID"`
	Content    string    `dynamodbav:"Content"`
	AuthorID   string    `dynamodbav:"AuthorID"`
	PostID     string    `dynamodbav:"PostID"`
	ParentID   *string   `dynamodbav:"ParentID,omitempty"`
	IsApproved bool      `dynamodbav:"IsApproved"`
	IsEdited   bool      `dynamodbav:"IsEdited"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt  time.Time `dynamodbav:"UpdatedAt"`
}

func newCommentItem(c *domain.Comment) commentItem {
	return commentItem{
		PK:         entityPK(entityComment, c.ID),
		SK:         metadataSK,
		GSI1PK:     "POST#" + c.PostID,
		GSI2PK:     "AUTHOR#" + c.AuthorID,
		EntityType: entityComment,
		ID:         c.ID,
		Content:    c.Content,
		AuthorID:   c.AuthorID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		IsApproved: c.IsApproved,
		IsEdited:   c.IsEdited,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (i commentItem) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:         i.ID,
		Content:    i.Content,
		AuthorID:   i.AuthorID,
		PostID:     i.PostID,
		ParentID:   i.ParentID,
		IsApproved: i.IsApproved,
		IsEdited:   i.IsEdited,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

// CommentRepository is the DynamoDB implementation of
// ports.CommentRepository.
type CommentRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewCommentRepository creates a DynamoDB-backed comment repository.
func NewCommentRepository(store *Store, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{store: store, logger: logger}
}

// Create writes a new comment with a generated id. New comments start
// approved; moderation flips the flag off, not on.
func (r *CommentRepository) Create(ctx context.Context, draft domain.CommentDraft) (*domain.Comment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		ID:         uuid.New().String(),
		Content:    draft.Content,
		AuthorID:   draft.AuthorID,
		PostID:     draft.PostID,
		ParentID:   draft.ParentID,
		IsApproved: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	av, err := attributevalue.MarshalMap(newCommentItem(comment))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal comment")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, r.store.translate("PutItem", err)
	}

	r.logger.Debug("comment created",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", comment.PostID),
	)
	return comment, nil
}

// FindByID returns the comment or (nil, nil) when absent.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	out, err := r.store.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.Table),
		Key:       entityKey(entityComment, id),
	})
	if err != nil {
		return nil, r.store.translate("GetItem", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item commentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal comment")
	}
	return item.toDomain(), nil
}

// FindByPost returns every comment on a post through the post index.
func (r *CommentRepository) FindByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return r.queryIndex(ctx, r.store.GSI1, "GSI1PK", "POST#"+postID, nil)
}

// FindByAuthor returns the author's comments through the author index.
func (r *CommentRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Comment, error) {
	return r.queryIndex(ctx, r.store.GSI2, "GSI2PK", "AUTHOR#"+authorID, nil)
}

// FindReplies returns the direct replies to a comment. The lookup
// queries the parent's post partition and filters on ParentID, so it
// never touches unrelated posts.
func (r *CommentRepository) FindReplies(ctx context.Context, parentID string) ([]*domain.Comment, error) {
	parent, err := r.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, nil
	}

	filt := expression.Name("ParentID").Equal(expression.Value(parentID))
	return r.queryIndex(ctx, r.store.GSI1, "GSI1PK", "POST#"+parent.PostID, &filt)
}

// FindApprovedSince scans for approved comments created at or after
// the given instant.
func (r *CommentRepository) FindApprovedSince(ctx context.Context, since time.Time) ([]*domain.Comment, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(entityComment)).
		And(expression.Name("IsApproved").Equal(expression.Value(true))).
		And(expression.Name("CreatedAt").GreaterThanEqual(expression.Value(since.UTC())))
	expr, err := expression.NewBuilder().WithFilter(filt).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build comment scan")
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
	return unmarshalComments(raw)
}

func (r *CommentRepository) queryIndex(ctx context.Context, index, keyName, keyValue string, filt *expression.ConditionBuilder) ([]*domain.Comment, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyName).Equal(expression.Value(keyValue)))
	if filt != nil {
		builder = builder.WithFilter(*filt)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build comment query")
	}

	raw, err := r.store.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.Table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, r.store.translate("Query", err)
	}
	return unmarshalComments(raw)
}

// Update reads, patches, and conditionally writes the record back.
func (r *CommentRepository) Update(ctx context.Context, id string, patch domain.CommentPatch) (*domain.Comment, error) {
	comment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperrors.NewNotFoundError("comment")
	}

	if err := patch.Apply(comment); err != nil {
		return nil, err
	}
	comment.UpdatedAt = time.Now().UTC()

	av, err := attributevalue.MarshalMap(newCommentItem(comment))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal comment")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, apperrors.NewNotFoundError("comment")
		}
		return nil, r.store.translate("PutItem", err)
	}
	return comment, nil
}

// Delete removes the record, failing when the id is unknown.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.store.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.store.Table),
		Key:                 entityKey(entityComment, id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("comment")
		}
		return r.store.translate("DeleteItem", err)
	}
	return nil
}

func unmarshalComments(raw []map[string]types.AttributeValue) ([]*domain.Comment, error) {
	comments := make([]*domain.Comment, 0, len(raw))
	for _, m := range raw {
		var item commentItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, apperrors.Wrap(err, "unmarshal comment")
		}
		comments = append(comments, item.toDomain())
	}
	return comments, nil
}
