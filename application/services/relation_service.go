package services

import (
	"context"

	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/domain"
	"blog-backend/pkg/errors"
)

// RelationService manages one relation type (likes or bookmarks)
// between users and posts or comments. The wiring builds one instance
// per type, each bound to its own repository.
//
// Creation is idempotent on the (user, target) pair: repeating the
// call returns the record the first call created. Removal is not —
// removing a pair that does not exist is a Conflict, since it means
// the caller's view of the relation is stale.
type RelationService struct {
	kind          domain.RelationKind
	relations     ports.RelationRepository
	posts         ports.PostRepository
	users         ports.UserRepository
	notifications *NotificationService
	logger        *zap.Logger
}

// NewRelationService creates a relation service for one relation kind.
// notifications may be nil; only the like service is wired with it.
func NewRelationService(
	kind domain.RelationKind,
	relations ports.RelationRepository,
	posts ports.PostRepository,
	users ports.UserRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *RelationService {
	return &RelationService{
		kind:          kind,
		relations:     relations,
		posts:         posts,
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateRelation records that a user relates to a target. If the pair
// already exists the existing record is returned as-is; a concurrent
// duplicate resolves to the first writer's record at the driver level,
// so the caller never sees a Conflict for a repeat.
func (s *RelationService) CreateRelation(ctx context.Context, userID, targetID string, targetKind domain.TargetKind) (*domain.Relation, error) {
	draft := domain.RelationDraft{
		UserID: userID,
		Target: domain.TargetRef{Kind: targetKind, ID: targetID},
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.relations.FindByUserAndTarget(ctx, userID, draft.Target)
	if err != nil {
		return nil, err
	}

	rel, err := s.relations.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	// Notify only when this call created the record. Two concurrent
	// first calls can both pass the pre-check and both notify; the
	// notification path has no deduplication.
	if existing == nil {
		s.logger.Debug("relation created",
			zap.String("kind", string(s.kind)),
			zap.String("userID", userID),
			zap.String("targetID", targetID),
		)
		s.notifyLike(ctx, rel)
	}
	return rel, nil
}

// notifyLike tells a post's author about a fresh like. Failures are
// logged and swallowed: the like itself is already persisted.
func (s *RelationService) notifyLike(ctx context.Context, rel *domain.Relation) {
	if s.notifications == nil || s.kind != domain.RelationLike || rel.PostID == nil {
		return
	}

	post, err := s.posts.FindByID(ctx, *rel.PostID)
	if err != nil || post == nil || post.AuthorID == rel.UserID {
		return
	}

	likerName := rel.UserID
	if liker, err := s.users.FindByID(ctx, rel.UserID); err == nil && liker != nil {
		likerName = liker.Name
	}

	if _, err := s.notifications.NotifyNewLike(ctx, post.AuthorID, likerName, post.ID); err != nil {
		s.logger.Warn("like notification failed",
			zap.String("postID", post.ID),
			zap.Error(err),
		)
	}
}

// RemoveRelation deletes the relation for a (user, target) pair.
// Removing a pair that does not exist returns a Conflict.
func (s *RelationService) RemoveRelation(ctx context.Context, userID, targetID string, targetKind domain.TargetKind) error {
	target := domain.TargetRef{Kind: targetKind, ID: targetID}
	rel, err := s.relations.FindByUserAndTarget(ctx, userID, target)
	if err != nil {
		return err
	}
	if rel == nil {
		return errors.NewConflictError("relation does not exist")
	}
	if err := s.relations.Delete(ctx, rel.ID); err != nil {
		if errors.IsNotFound(err) {
			// Deleted between the read and the delete.
			return errors.NewConflictError("relation does not exist")
		}
		return err
	}

	s.logger.Debug("relation removed",
		zap.String("kind", string(s.kind)),
		zap.String("userID", userID),
		zap.String("targetID", targetID),
	)
	return nil
}

// HasRelation reports whether the (user, target) pair exists.
func (s *RelationService) HasRelation(ctx context.Context, userID, targetID string, targetKind domain.TargetKind) (bool, error) {
	rel, err := s.relations.FindByUserAndTarget(ctx, userID, domain.TargetRef{Kind: targetKind, ID: targetID})
	if err != nil {
		return false, err
	}
	return rel != nil, nil
}

// RelationsForTarget returns every relation pointing at a target.
func (s *RelationService) RelationsForTarget(ctx context.Context, targetID string, targetKind domain.TargetKind) ([]*domain.Relation, error) {
	return s.relations.FindByTarget(ctx, domain.TargetRef{Kind: targetKind, ID: targetID})
}

// RelationsForUser returns every relation a user holds.
func (s *RelationService) RelationsForUser(ctx context.Context, userID string) ([]*domain.Relation, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id is required")
	}
	return s.relations.FindByUser(ctx, userID)
}

// CountForTarget returns the number of relations pointing at a target.
func (s *RelationService) CountForTarget(ctx context.Context, targetID string, targetKind domain.TargetKind) (int, error) {
	return s.relations.CountByTarget(ctx, domain.TargetRef{Kind: targetKind, ID: targetID})
}
