package surreal

import (
	"context"
	"time"

	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

type relationRecord struct {
	ID         *models.RecordID      `json:"id,omitempty"`
	UserID     string                `json:"user_id"`
	PostID     *string               `json:"post_id,omitempty"`
	CommentID  *string               `json:"comment_id,omitempty"`
	TargetKind string                `json:"target_kind"`
	TargetID   string                `json:"target_id"`
	CreatedAt  models.CustomDateTime `json:"created_at"`
}

func (rec relationRecord) toDomain() *domain.Relation {
	return &domain.Relation{
		ID:        recordIDString(rec.ID),
		UserID:    rec.UserID,
		PostID:    rec.PostID,
		CommentID: rec.CommentID,
		CreatedAt: rec.CreatedAt.Time,
	}
}

func relationsFromRows(rows []relationRecord) []*domain.Relation {
	relations := make([]*domain.Relation, 0, len(rows))
	for _, rec := range rows {
		relations = append(relations, rec.toDomain())
	}
	return relations
}

// RelationRepository is the SurrealDB implementation of
// ports.RelationRepository. Each relation kind lives in its own
// table, and the record id is derived from the (user, target)
// natural key, so the table's id uniqueness carries the pair's
// uniqueness and a duplicate CREATE is rejected by the database, not
// by a racy check in this code.
type RelationRepository struct {
	store  *Store
	kind   domain.RelationKind
	table  string
	logger *zap.Logger
}

// NewRelationRepository creates a SurrealDB-backed relation
// repository for one relation kind.
func NewRelationRepository(store *Store, kind domain.RelationKind, logger *zap.Logger) *RelationRepository {
	table := "likes"
	if kind == domain.RelationBookmark {
		table = "bookmarks"
	}
	return &RelationRepository{store: store, kind: kind, table: table, logger: logger}
}

func (r *RelationRepository) newRecord(rel *domain.Relation) relationRecord {
	rid := recordID(r.table, rel.ID)
	target := rel.Target()
	return relationRecord{
		ID:         &rid,
		UserID:     rel.UserID,
		PostID:     rel.PostID,
		CommentID:  rel.CommentID,
		TargetKind: string(target.Kind),
		TargetID:   target.ID,
		CreatedAt:  models.CustomDateTime{Time: rel.CreatedAt},
	}
}

// Create writes the relation under its derived record id. When the
// id is already taken, including by a concurrent request, the
// existing record is returned unchanged.
func (r *RelationRepository) Create(ctx context.Context, draft domain.RelationDraft) (*domain.Relation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	rel := domain.NewRelation(draft, time.Now().UTC())

	if _, err := surrealdb.Create[relationRecord](ctx, db, r.table, r.newRecord(rel)); err != nil {
		if isAlreadyExists(err) {
			existing, ferr := r.FindByID(ctx, rel.ID)
			if ferr != nil {
				return nil, ferr
			}
			if existing != nil {
				return existing, nil
			}
			// The record vanished between the rejected create and the
			// read; a concurrent delete won. The caller retries.
			return nil, apperrors.NewConflictError("relation changed concurrently").WithCause(err)
		}
		return nil, r.store.translate("Create", err)
	}

	r.logger.Debug("relation created",
		zap.String("kind", string(r.kind)),
		zap.String("relation_id", rel.ID),
	)
	return rel, nil
}

// FindByID returns the relation or (nil, nil) when absent.
func (r *RelationRepository) FindByID(ctx context.Context, id string) (*domain.Relation, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := surrealdb.Select[relationRecord](ctx, db, recordID(r.table, id))
	if err != nil {
		return nil, r.store.translate("Select", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	return rec.toDomain(), nil
}

// FindByUserAndTarget resolves the pair's derived id and reads it.
func (r *RelationRepository) FindByUserAndTarget(ctx context.Context, userID string, target domain.TargetRef) (*domain.Relation, error) {
	return r.FindByID(ctx, domain.RelationID(userID, target))
}

// FindByTarget returns every relation of this kind on a target.
func (r *RelationRepository) FindByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Relation, error) {
	rows, err := queryRows[relationRecord](ctx, r.store, "FindByTarget",
		"SELECT * FROM type::table($table) WHERE target_kind = $kind AND target_id = $id",
		map[string]any{"table": r.table, "kind": string(target.Kind), "id": target.ID})
	if err != nil {
		return nil, err
	}
	return relationsFromRows(rows), nil
}

// FindByUser returns every relation of this kind by a user, newest
// first.
func (r *RelationRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Relation, error) {
	rows, err := queryRows[relationRecord](ctx, r.store, "FindByUser",
		"SELECT * FROM type::table($table) WHERE user_id = $user ORDER BY created_at DESC",
		map[string]any{"table": r.table, "user": userID})
	if err != nil {
		return nil, err
	}
	return relationsFromRows(rows), nil
}

// CountByTarget counts relations of this kind on a target.
func (r *RelationRepository) CountByTarget(ctx context.Context, target domain.TargetRef) (int, error) {
	return queryCount(ctx, r.store, "CountByTarget",
		"SELECT count() FROM type::table($table) WHERE target_kind = $kind AND target_id = $id GROUP ALL",
		map[string]any{"table": r.table, "kind": string(target.Kind), "id": target.ID})
}

// FindCreatedSince returns relations of this kind created at or
// after the given instant.
func (r *RelationRepository) FindCreatedSince(ctx context.Context, since time.Time) ([]*domain.Relation, error) {
	rows, err := queryRows[relationRecord](ctx, r.store, "FindCreatedSince",
		"SELECT * FROM type::table($table) WHERE created_at >= $since",
		map[string]any{"table": r.table, "since": models.CustomDateTime{Time: since.UTC()}})
	if err != nil {
		return nil, err
	}
	return relationsFromRows(rows), nil
}

// Delete removes the record, failing when the id is unknown.
func (r *RelationRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("relation")
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Delete[relationRecord](ctx, db, recordID(r.table, id)); err != nil {
		return r.store.translate("Delete", err)
	}
	return nil
}
