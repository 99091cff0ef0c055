package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"
)

// RelationRepository is an in-memory ports.RelationRepository for one
// relation kind. The map key is the id derived from the (user,
// target) pair, so duplicate creates resolve to the stored record
// under the same lock that would have inserted them.
type RelationRepository struct {
	mu        sync.RWMutex
	kind      domain.RelationKind
	relations map[string]*domain.Relation
}

// NewRelationRepository creates an empty in-memory relation
// repository for one relation kind.
func NewRelationRepository(kind domain.RelationKind) *RelationRepository {
	return &RelationRepository{kind: kind, relations: make(map[string]*domain.Relation)}
}

func cloneRelation(rel *domain.Relation) *domain.Relation {
	cp := *rel
	if rel.PostID != nil {
		post := *rel.PostID
		cp.PostID = &post
	}
	if rel.CommentID != nil {
		comment := *rel.CommentID
		cp.CommentID = &comment
	}
	return &cp
}

// Create stores the relation, returning the existing record
// unchanged when the pair is already present.
func (r *RelationRepository) Create(ctx context.Context, draft domain.RelationDraft) (*domain.Relation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := domain.RelationID(draft.UserID, draft.Target)
	if existing, ok := r.relations[id]; ok {
		return cloneRelation(existing), nil
	}

	rel := domain.NewRelation(draft, time.Now().UTC())
	r.relations[rel.ID] = cloneRelation(rel)
	return rel, nil
}

// FindByID returns the relation or (nil, nil) when absent.
func (r *RelationRepository) FindByID(ctx context.Context, id string) (*domain.Relation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rel, ok := r.relations[id]
	if !ok {
		return nil, nil
	}
	return cloneRelation(rel), nil
}

// FindByUserAndTarget resolves the pair's derived id and reads it.
func (r *RelationRepository) FindByUserAndTarget(ctx context.Context, userID string, target domain.TargetRef) (*domain.Relation, error) {
	return r.FindByID(ctx, domain.RelationID(userID, target))
}

// FindByTarget returns every relation on a target.
func (r *RelationRepository) FindByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Relation, error) {
	return r.filter(func(rel *domain.Relation) bool {
		return rel.Target() == target
	}), nil
}

// FindByUser returns every relation by a user.
func (r *RelationRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Relation, error) {
	return r.filter(func(rel *domain.Relation) bool {
		return rel.UserID == userID
	}), nil
}

// CountByTarget counts relations on a target.
func (r *RelationRepository) CountByTarget(ctx context.Context, target domain.TargetRef) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rel := range r.relations {
		if rel.Target() == target {
			count++
		}
	}
	return count, nil
}

// FindCreatedSince returns relations created at or after the given
// instant.
func (r *RelationRepository) FindCreatedSince(ctx context.Context, since time.Time) ([]*domain.Relation, error) {
	return r.filter(func(rel *domain.Relation) bool {
		return !rel.CreatedAt.Before(since)
	}), nil
}

func (r *RelationRepository) filter(keep func(*domain.Relation) bool) []*domain.Relation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var relations []*domain.Relation
	for _, rel := range r.relations {
		if keep(rel) {
			relations = append(relations, cloneRelation(rel))
		}
	}
	sort.Slice(relations, func(a, b int) bool {
		return relations[a].CreatedAt.Before(relations[b].CreatedAt)
	})
	return relations
}

// Delete removes the relation, failing when the id is unknown.
func (r *RelationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.relations[id]; !ok {
		return apperrors.NewNotFoundError("relation")
	}
	delete(r.relations, id)
	return nil
}
