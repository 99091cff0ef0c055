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
	"go.uber.org/zap"
)

type relationItem struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	GSI1PK     string    `dynamodbav:"GSI1PK"`
	GSI2PK     string    `dynamodbav:"GSI2PK"`
	EntityType string    `dynamodbav:"EntityType"`
	ID         string    `dynamodbav:"ID"`
	UserID     string    `dynamodbav:"UserID"`
	PostID     *string   `dynamodbav:"PostID,omitempty"`
	CommentID  *string   `dynamodbav:"CommentID,omitempty"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt"`
}

func (i relationItem) toDomain() *domain.Relation {
	return &domain.Relation{
		ID:        i.ID,
		UserID:    i.UserID,
		PostID:    i.PostID,
		CommentID: i.CommentID,
		CreatedAt: i.CreatedAt,
	}
}

// RelationRepository is the DynamoDB implementation of
// ports.RelationRepository. One instance handles one relation kind;
// the selector binds a likes instance and a bookmarks instance over
// the same store.
//
// A relation record is keyed by the id derived from its (user,
// target) natural key, so the table's primary-key uniqueness is the
// uniqueness of the pair and the conditional put in Create is the
// whole idempotency story.
type RelationRepository struct {
	store  *Store
	kind   domain.RelationKind
	logger *zap.Logger
}

// NewRelationRepository creates a DynamoDB-backed relation repository
// for one relation kind.
func NewRelationRepository(store *Store, kind domain.RelationKind, logger *zap.Logger) *RelationRepository {
	return &RelationRepository{store: store, kind: kind, logger: logger}
}

func (r *RelationRepository) newItem(rel *domain.Relation) relationItem {
	target := rel.Target()
	return relationItem{
		PK:         entityPK(string(r.kind), rel.ID),
		SK:         metadataSK,
		GSI1PK:     userGSI1PK(rel.UserID),
		GSI2PK:     targetGSI2PK(string(target.Kind), target.ID),
		EntityType: string(r.kind),
		ID:         rel.ID,
		UserID:     rel.UserID,
		PostID:     rel.PostID,
		CommentID:  rel.CommentID,
		CreatedAt:  rel.CreatedAt,
	}
}

// Create writes the relation conditionally on its key not existing.
// When the pair is already present, including a record written by a
// concurrent request between a caller's check and this write, the
// existing record is returned unchanged.
func (r *RelationRepository) Create(ctx context.Context, draft domain.RelationDraft) (*domain.Relation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	rel := domain.NewRelation(draft, time.Now().UTC())

	av, err := attributevalue.MarshalMap(r.newItem(rel))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal relation")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			existing, ferr := r.FindByID(ctx, rel.ID)
			if ferr != nil {
				return nil, ferr
			}
			if existing != nil {
				return existing, nil
			}
			// The record vanished between the rejected put and the
			// read; a concurrent delete won. The caller retries.
			return nil, apperrors.NewConflictError("relation changed concurrently").WithCause(err)
		}
		return nil, r.store.translate("PutItem", err)
	}

	r.logger.Debug("relation created",
		zap.String("kind", string(r.kind)),
		zap.String("relation_id", rel.ID),
	)
	return rel, nil
}

// FindByID returns the relation or (nil, nil) when absent.
func (r *RelationRepository) FindByID(ctx context.Context, id string) (*domain.Relation, error) {
	out, err := r.store.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.Table),
		Key:       entityKey(string(r.kind), id),
	})
	if err != nil {
		return nil, r.store.translate("GetItem", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item relationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal relation")
	}
	return item.toDomain(), nil
}

// FindByUserAndTarget resolves the pair's derived id and reads it.
func (r *RelationRepository) FindByUserAndTarget(ctx context.Context, userID string, target domain.TargetRef) (*domain.Relation, error) {
	return r.FindByID(ctx, domain.RelationID(userID, target))
}

// FindByTarget returns every relation of this kind on a target.
func (r *RelationRepository) FindByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Relation, error) {
	return r.queryIndex(ctx, r.store.GSI2, "GSI2PK", targetGSI2PK(string(target.Kind), target.ID))
}

// FindByUser returns every relation of this kind by a user.
func (r *RelationRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Relation, error) {
	return r.queryIndex(ctx, r.store.GSI1, "GSI1PK", userGSI1PK(userID))
}

// CountByTarget counts relations of this kind on a target without
// fetching the records.
func (r *RelationRepository) CountByTarget(ctx context.Context, target domain.TargetRef) (int, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(targetGSI2PK(string(target.Kind), target.ID)))
	filt := expression.Name("EntityType").Equal(expression.Value(string(r.kind)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return 0, apperrors.Wrap(err, "build relation count")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.Table),
		IndexName:                 aws.String(r.store.GSI2),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	}

	total := 0
	for {
		out, err := r.store.Client.Query(ctx, input)
		if err != nil {
			return 0, r.store.translate("Query", err)
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// FindCreatedSince scans for relations of this kind created at or
// after the given instant.
func (r *RelationRepository) FindCreatedSince(ctx context.Context, since time.Time) ([]*domain.Relation, error) {
	filt := expression.Name("EntityType").Equal(expression.Value(string(r.kind))).
		And(expression.Name("CreatedAt").GreaterThanEqual(expression.Value(since.UTC())))
	expr, err := expression.NewBuilder().WithFilter(filt).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build relation scan")
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
	return r.unmarshalAll(raw)
}

// Delete removes the record, failing when the id is unknown.
func (r *RelationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.store.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.store.Table),
		Key:                 entityKey(string(r.kind), id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("relation")
		}
		return r.store.translate("DeleteItem", err)
	}
	return nil
}

func (r *RelationRepository) queryIndex(ctx context.Context, index, keyName, keyValue string) ([]*domain.Relation, error) {
	// USER# and TARGET# index partitions are shared with other entity
	// types, so queries always filter down to this relation kind.
	keyCond := expression.Key(keyName).Equal(expression.Value(keyValue))
	filt := expression.Name("EntityType").Equal(expression.Value(string(r.kind)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build relation query")
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
	return r.unmarshalAll(raw)
}

func (r *RelationRepository) unmarshalAll(raw []map[string]types.AttributeValue) ([]*domain.Relation, error) {
	relations := make([]*domain.Relation, 0, len(raw))
	for _, m := range raw {
		var item relationItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, apperrors.Wrap(err, "unmarshal relation")
		}
		relations = append(relations, item.toDomain())
	}
	return relations, nil
}
