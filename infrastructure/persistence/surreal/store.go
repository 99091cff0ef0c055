package surreal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"blog-backend/infrastructure/config"
	apperrors "blog-backend/pkg/errors"

	"github.com/sony/gobreaker"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

// Store manages the SurrealDB session shared by the repository
// family. The connection is established lazily behind a circuit
// breaker: startup never blocks on the database, the first request
// pays for the dial, and repeated dial failures trip the breaker so
// requests fail fast until the timeout elapses and a probe retries.
type Store struct {
	cfg     *config.Config
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker

	mu sync.Mutex
	db *surrealdb.DB
}

// NewStore creates a store; it does not dial.
func NewStore(cfg *config.Config, logger *zap.Logger) *Store {
	s := &Store{cfg: cfg, logger: logger}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "surrealdb-connect",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return s
}

// Warm dials in the background so the first request usually finds a
// live session. Failures are logged and left to the lazy path.
func (s *Store) Warm(ctx context.Context) {
	go func() {
		if _, err := s.DB(ctx); err != nil {
			s.logger.Warn("SurrealDB warm-up failed, will retry on first use", zap.Error(err))
		}
	}()
}

// DB returns the live session, dialing through the breaker when
// there is none yet.
func (s *Store) DB(ctx context.Context) (*surrealdb.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	v, err := s.breaker.Execute(func() (any, error) {
		return s.connect(ctx)
	})
	if err != nil {
		return nil, apperrors.NewUnavailableError("surrealdb", err)
	}

	s.db = v.(*surrealdb.DB)
	return s.db, nil
}

func (s *Store) connect(ctx context.Context) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, s.cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.cfg.SurrealURL, err)
	}

	if s.cfg.SurrealUsername != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{
			Username: s.cfg.SurrealUsername,
			Password: s.cfg.SurrealPassword,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("sign in: %w", err)
		}
	}

	if err := db.Use(ctx, s.cfg.SurrealNamespace, s.cfg.SurrealDatabase); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("use %s/%s: %w", s.cfg.SurrealNamespace, s.cfg.SurrealDatabase, err)
	}

	s.logger.Info("connected to SurrealDB",
		zap.String("namespace", s.cfg.SurrealNamespace),
		zap.String("database", s.cfg.SurrealDatabase),
	)
	return db, nil
}

// Ping verifies the session is usable. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Query[any](ctx, db, "RETURN 1", nil); err != nil {
		return s.translate("Ping", err)
	}
	return nil
}

// Close tears down the session if one was established.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close(ctx)
	s.db = nil
	return err
}

// translate maps a SurrealDB failure onto the repository error
// taxonomy. Transport failures surface as unavailability; anything
// the server answered with is an internal error.
func (s *Store) translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, net.ErrClosed) {
		s.logger.Warn("SurrealDB unreachable",
			zap.String("operation", op),
			zap.Error(err),
		)
		return apperrors.NewUnavailableError("surrealdb", err)
	}

	s.logger.Error("SurrealDB operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	return apperrors.NewInternalError(fmt.Sprintf("surrealdb %s failed", op)).WithCause(err)
}

// isAlreadyExists reports whether a CREATE was rejected because the
// record id is taken. The SDK surfaces this as a plain server error
// message, so the check is textual.
func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

// recordID builds the record id for an entity row.
func recordID(table, id string) models.RecordID {
	return models.NewRecordID(table, id)
}

// recordIDString extracts the bare id from a record id read back from
// the database.
func recordIDString(rid *models.RecordID) string {
	if rid == nil {
		return ""
	}
	if s, ok := rid.ID.(string); ok {
		return s
	}
	return fmt.Sprint(rid.ID)
}

// queryRows runs a SurrealQL statement and returns the first
// statement's rows. The SDK reports per-statement errors through the
// returned error, so a nil error means the result is usable.
func queryRows[T any](ctx context.Context, s *Store, op, sql string, vars map[string]any) ([]T, error) {
	db, err := s.DB(ctx)
	if err != nil {
		return nil, err
	}

	results, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, s.translate(op, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// countRow is the shape of a `SELECT count() ... GROUP ALL` result.
type countRow struct {
	Count int `json:"count"`
}

// queryCount runs a counting statement and returns its single value;
// no rows means zero.
func queryCount(ctx context.Context, s *Store, op, sql string, vars map[string]any) (int, error) {
	rows, err := queryRows[countRow](ctx, s, op, sql, vars)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

// optTime converts an optional domain timestamp to the wire type.
func optTime(t *time.Time) *models.CustomDateTime {
	if t == nil {
		return nil
	}
	return &models.CustomDateTime{Time: t.UTC()}
}

// optTimeBack converts an optional wire timestamp to the domain type.
func optTimeBack(t *models.CustomDateTime) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
