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

const entityNotification = "NOTIFICATION"

type notificationItem struct {
	PK          string     `dynamodbav:"PK"`
	SK          string     `dynamodbav:"SK"`
	GSI1PK      string     `dynamodbav:"GSI1PK"`
	EntityType  string     `dynamodbav:"EntityType"`
	ID          string     `dynamodbav:"ID"`
	UserID      string     `dynamodbav:"UserID"`
	Type        string     `dynamodbav:"Type"`
	Title       string     `dynamodbav:"Title"`
	Message     string     `dynamodbav:"Message"`
	ActionURL   string     `dynamodbav:"ActionURL,omitempty"`
	RelatedID   string     `dynamodbav:"RelatedID,omitempty"`
	RelatedKind string     `dynamodbav:"RelatedKind,omitempty"`
	IsRead      bool       `dynamodbav:"IsRead"`
	ReadAt      *time.Time `dynamodbav:"ReadAt,omitempty"`
	CreatedAt   time.Time  `dynamodbav:"CreatedAt"`
}

func newNotificationItem(n *domain.Notification) notificationItem {
	return notificationItem{
		PK:          entityPK(entityNotification, n.ID),
		SK:          metadataSK,
		GSI1PK:      userGSI1PK(n.UserID),
		EntityType:  entityNotification,
		ID:          n.ID,
		UserID:      n.UserID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		ActionURL:   n.ActionURL,
		RelatedID:   n.RelatedID,
		RelatedKind: string(n.RelatedKind),
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}

func (i notificationItem) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:          i.ID,
		UserID:      i.UserID,
		Type:        domain.NotificationType(i.Type),
		Title:       i.Title,
		Message:     i.Message,
		ActionURL:   i.ActionURL,
		RelatedID:   i.RelatedID,
		RelatedKind: domain.RelatedKind(i.RelatedKind),
		IsRead:      i.IsRead,
		ReadAt:      i.ReadAt,
		CreatedAt:   i.CreatedAt,
	}
}

// NotificationRepository is the DynamoDB implementation of
// ports.NotificationRepository.
type NotificationRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewNotificationRepository creates a DynamoDB-backed notification
// repository.
func NewNotificationRepository(store *Store, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{store: store, logger: logger}
}

// Create writes a new unread notification with a generated id.
func (r *NotificationRepository) Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	notification := &domain.Notification{
		ID:          uuid.New().String(),
		UserID:      draft.UserID,
		Type:        draft.Type,
		Title:       draft.Title,
		Message:     draft.Message,
		ActionURL:   draft.ActionURL,
		RelatedID:   draft.RelatedID,
		RelatedKind: draft.RelatedKind,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}

	av, err := attributevalue.MarshalMap(newNotificationItem(notification))
	if err != nil {
		return nil, apperrors.Wrap(err, "marshal notification")
	}

	_, err = r.store.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, r.store.translate("PutItem", err)
	}

	r.logger.Debug("notification created",
		zap.String("notification_id", notification.ID),
		zap.String("type", string(notification.Type)),
	)
	return notification, nil
}

// FindByID returns the notification or (nil, nil) when absent.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	out, err := r.store.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.Table),
		Key:       entityKey(entityNotification, id),
	})
	if err != nil {
		return nil, r.store.translate("GetItem", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item notificationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal notification")
	}
	return item.toDomain(), nil
}

// FindByUser returns one page of the user's notifications, newest
// first.
func (r *NotificationRepository) FindByUser(ctx context.Context, userID string, q ports.NotificationQuery) ([]*domain.Notification, error) {
	opts := ports.ListOptions{Limit: q.Limit, Offset: q.Offset}
	opts.Normalize()

	notifications, err := r.queryUser(ctx, userID, q.UnreadOnly)
	if err != nil {
		return nil, err
	}

	sort.Slice(notifications, func(a, b int) bool {
		return notifications[a].CreatedAt.After(notifications[b].CreatedAt)
	})
	return pageOf(notifications, opts).Items, nil
}

func (r *NotificationRepository) queryUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(userGSI1PK(userID)))
	filt := expression.Name("EntityType").Equal(expression.Value(entityNotification))
	if unreadOnly {
		filt = filt.And(expression.Name("IsRead").Equal(expression.Value(false)))
	}
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build notification query")
	}

	raw, err := r.store.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.Table),
		IndexName:                 aws.String(r.store.GSI1),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, r.store.translate("Query", err)
	}

	notifications := make([]*domain.Notification, 0, len(raw))
	for _, m := range raw {
		var item notificationItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, apperrors.Wrap(err, "unmarshal notification")
		}
		notifications = append(notifications, item.toDomain())
	}
	return notifications, nil
}

// MarkRead flips the record to read with a conditional update. The
// condition only passes on an unread record; when it fails the
// current record decides between "already read" (returned as-is,
// preserving the original ReadAt) and "no such notification".
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, readAt time.Time) (*domain.Notification, error) {
	update := expression.
		Set(expression.Name("IsRead"), expression.Value(true)).
		Set(expression.Name("ReadAt"), expression.Value(readAt.UTC()))
	cond := expression.Name("IsRead").Equal(expression.Value(false))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, apperrors.Wrap(err, "build read update")
	}

	out, err := r.store.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.store.Table),
		Key:                       entityKey(entityNotification, id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			current, ferr := r.FindByID(ctx, id)
			if ferr != nil {
				return nil, ferr
			}
			if current == nil {
				return nil, apperrors.NewNotFoundError("notification")
			}
			return current, nil
		}
		return nil, r.store.translate("UpdateItem", err)
	}

	var item notificationItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal notification")
	}
	return item.toDomain(), nil
}

// MarkAllRead transitions every notification that was unread when
// the sweep started and reports how many ended up read. Each record
// transitions through the same conditional update as MarkRead, so a
// concurrent single-record call never double-stamps ReadAt.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	unread, err := r.queryUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range unread {
		if _, err := r.MarkRead(ctx, n.ID, readAt); err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

// CountUnread counts the user's unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(userGSI1PK(userID)))
	filt := expression.Name("EntityType").Equal(expression.Value(entityNotification)).
		And(expression.Name("IsRead").Equal(expression.Value(false)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return 0, apperrors.Wrap(err, "build unread count")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.Table),
		IndexName:                 aws.String(r.store.GSI1),
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

// Delete removes the record, failing when the id is unknown.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.store.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.store.Table),
		Key:                 entityKey(entityNotification, id),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError("notification")
		}
		return r.store.translate("DeleteItem", err)
	}
	return nil
}

// DeleteAllForUser removes every notification of the user and reports
// how many were removed.
func (r *NotificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	notifications, err := r.queryUser(ctx, userID, false)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range notifications {
		if err := r.Delete(ctx, n.ID); err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}
