package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blog-backend/application/services"
	"blog-backend/domain"
	"blog-backend/pkg/common"
)

// RelationHandler serves one relation type's endpoints. The router
// mounts two instances, one over the like service and one over the
// bookmark service, with identical shapes.
type RelationHandler struct {
	relations *services.RelationService
	logger    *zap.Logger
}

// NewRelationHandler creates a relation handler over one relation
// service.
func NewRelationHandler(relations *services.RelationService, logger *zap.Logger) *RelationHandler {
	return &RelationHandler{relations: relations, logger: logger}
}

func targetFromRequest(r *http.Request) (string, domain.TargetKind) {
	if postID := chi.URLParam(r, "postID"); postID != "" {
		return postID, domain.TargetPost
	}
	return chi.URLParam(r, "commentID"), domain.TargetComment
}

// Create records the caller's relation to the target in the URL.
// Repeating the call returns the existing record with 200 instead of
// 201.
func (h *RelationHandler) Create(w http.ResponseWriter, r *http.Request) {
	targetID, kind := targetFromRequest(r)
	userID := subjectID(r)

	existed, err := h.relations.HasRelation(r.Context(), userID, targetID, kind)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	relation, err := h.relations.CreateRelation(r.Context(), userID, targetID, kind)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	common.RespondJSON(w, status, relation)
}

// Remove deletes the caller's relation to the target in the URL.
func (h *RelationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	targetID, kind := targetFromRequest(r)

	if err := h.relations.RemoveRelation(r.Context(), subjectID(r), targetID, kind); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ListByTarget returns every relation on the target in the URL.
func (h *RelationHandler) ListByTarget(w http.ResponseWriter, r *http.Request) {
	targetID, kind := targetFromRequest(r)

	relations, err := h.relations.RelationsForTarget(r.Context(), targetID, kind)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, relations)
}

// CountByTarget returns the number of relations on the target.
func (h *RelationHandler) CountByTarget(w http.ResponseWriter, r *http.Request) {
	targetID, kind := targetFromRequest(r)

	count, err := h.relations.CountForTarget(r.Context(), targetID, kind)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// ListMine returns the caller's relations of this type.
func (h *RelationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	relations, err := h.relations.RelationsForUser(r.Context(), subjectID(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, relations)
}
