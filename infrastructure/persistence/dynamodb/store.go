package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"blog-backend/application/ports"
	"blog-backend/infrastructure/config"
	apperrors "blog-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Store bundles the DynamoDB client with the single-table layout
// shared by every entity repository in this driver family.
//
// Layout: each record lives at PK=<ENTITY>#<id>, SK=METADATA.
// GSI1 serves per-user and slug/email lookups, GSI2 serves
// per-target and per-parent lookups. Lookups with no matching index
// fall back to table scans filtered in the application layer; the
// results are exact, only the cost differs.
type Store struct {
	Client *dynamodb.Client
	Table  string
	GSI1   string
	GSI2   string
	logger *zap.Logger
}

// NewStore creates a store over an already-configured client.
func NewStore(client *dynamodb.Client, cfg *config.Config, logger *zap.Logger) *Store {
	return &Store{
		Client: client,
		Table:  cfg.DynamoDBTable,
		GSI1:   cfg.IndexName,
		GSI2:   cfg.GSI2IndexName,
		logger: logger,
	}
}

// Ping verifies the table is reachable. Used by the health endpoint,
// never on the request path.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.Table),
	})
	if err != nil {
		return s.translate("DescribeTable", err)
	}
	return nil
}

// metadataSK is the sort key for every entity record; the table is
// keyed by entity id, not by access pattern.
const metadataSK = "METADATA"

func entityPK(entity, id string) string {
	return fmt.Sprintf("%s#%s", entity, id)
}

func userGSI1PK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func targetGSI2PK(kind, id string) string {
	return fmt.Sprintf("TARGET#%s#%s", kind, id)
}

// entityKey builds the primary key for an entity record.
func entityKey(entity, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: entityPK(entity, id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

// pageOf slices an already-ordered full result into the requested
// page. Offsets past the end yield an empty page with the true total.
func pageOf[T any](items []*T, opts ports.ListOptions) *ports.Page[T] {
	total := len(items)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return &ports.Page[T]{Items: items[start:end], Total: total}
}

// isConditionalCheckFailed reports whether a write was rejected by
// its condition expression.
func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// translate maps a DynamoDB failure onto the repository error
// taxonomy so no SDK type leaks across the contract boundary.
func (s *Store) translate(op string, err error) error {
	if err == nil {
		return nil
	}

	if isConditionalCheckFailed(err) {
		return apperrors.NewConflictError(fmt.Sprintf("conditional write failed during %s", op)).WithCause(err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.(type) {
		case *types.ResourceNotFoundException,
			*types.ProvisionedThroughputExceededException,
			*types.RequestLimitExceeded,
			*types.InternalServerError:
			return apperrors.NewUnavailableError("dynamodb", err)
		}
		s.logger.Error("DynamoDB operation failed",
			zap.String("operation", op),
			zap.String("code", apiErr.ErrorCode()),
			zap.Error(err),
		)
		return apperrors.NewInternalError(fmt.Sprintf("dynamodb %s failed", op)).WithCause(err)
	}

	// Anything that is not an API error is a transport problem: the
	// request fails, the process keeps serving, the SDK reconnects on
	// the next call.
	s.logger.Warn("DynamoDB unreachable",
		zap.String("operation", op),
		zap.Error(err),
	)
	return apperrors.NewUnavailableError("dynamodb", err)
}

// queryAll drains a query across result pages.
func (s *Store) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// scanAll drains a scan across result pages.
func (s *Store) scanAll(ctx context.Context, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
