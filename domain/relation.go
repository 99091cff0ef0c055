package domain

import (
	"fmt"
	"time"

	"blog-backend/pkg/errors"
)

// RelationKind distinguishes the two social-graph relation types.
// They share one shape but are stored and counted independently.
type RelationKind string

const (
	RelationLike     RelationKind = "LIKE"
	RelationBookmark RelationKind = "BOOKMARK"
)

// TargetKind names the entity a relation points at.
type TargetKind string

const (
	TargetPost    TargetKind = "POST"
	TargetComment TargetKind = "COMMENT"
)

// IsValid reports whether the target kind is known.
func (k TargetKind) IsValid() bool {
	return k == TargetPost || k == TargetComment
}

// TargetRef identifies the post or comment a relation points at.
type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// Relation links a user to exactly one target. The (UserID, target)
// pair is the relation's natural key and is unique for the lifetime
// of the record; the record id is derived from it so the backing
// store's primary-key uniqueness enforces the invariant.
type Relation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PostID    *string   `json:"postId,omitempty"`
	CommentID *string   `json:"commentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Target returns the relation's target reference.
func (r *Relation) Target() TargetRef {
	if r.PostID != nil {
		return TargetRef{Kind: TargetPost, ID: *r.PostID}
	}
	if r.CommentID != nil {
		return TargetRef{Kind: TargetComment, ID: *r.CommentID}
	}
	return TargetRef{}
}

// RelationID derives the deterministic record id for a (user, target)
// pair. Both backend drivers key relation records by this value.
func RelationID(userID string, target TargetRef) string {
	return fmt.Sprintf("%s#%s#%s", userID, target.Kind, target.ID)
}

// RelationDraft carries the fields required to create a relation.
type RelationDraft struct {
	UserID string
	Target TargetRef
}

// Validate checks the draft's natural key.
func (d *RelationDraft) Validate() error {
	if d.UserID == "" {
		return errors.NewValidationError("relation user id is required")
	}
	if d.Target.ID == "" {
		return errors.NewValidationError("relation target id is required")
	}
	if !d.Target.Kind.IsValid() {
		return errors.NewValidationError("unknown relation target kind: " + string(d.Target.Kind))
	}
	return nil
}

// NewRelation builds the record for a draft, including its derived id.
// The caller is responsible for persisting it.
func NewRelation(d RelationDraft, createdAt time.Time) *Relation {
	r := &Relation{
		ID:        RelationID(d.UserID, d.Target),
		UserID:    d.UserID,
		CreatedAt: createdAt,
	}
	switch d.Target.Kind {
	case TargetPost:
		id := d.Target.ID
		r.PostID = &id
	case TargetComment:
		id := d.Target.ID
		r.CommentID = &id
	}
	return r
}
