package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blog-backend/application/services"
	"blog-backend/domain"
	"blog-backend/pkg/common"
)

// CommentHandler serves the comment endpoints not scoped under a
// post: single-comment reads, edits, moderation and replies.
type CommentHandler struct {
	comments *services.CommentService
	logger   *zap.Logger
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(comments *services.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type updateCommentRequest struct {
	Content *string `json:"content" validate:"omitempty,max=5000"`
}

// Get returns one comment by id.
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comments.Get(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, comment)
}

// Replies returns the direct replies to a comment.
func (h *CommentHandler) Replies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.comments.Replies(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, replies)
}

// Update edits a comment's content.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCommentRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), chi.URLParam(r, "commentID"), domain.CommentPatch{
		Content: req.Content,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, comment)
}

// Approve flips the moderation flag on.
func (h *CommentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setApproved(w, r, true)
}

// Reject flips the moderation flag off.
func (h *CommentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setApproved(w, r, false)
}

func (h *CommentHandler) setApproved(w http.ResponseWriter, r *http.Request, approved bool) {
	comment, err := h.comments.SetApproved(r.Context(), chi.URLParam(r, "commentID"), approved)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, comment)
}

// Delete removes a comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "commentID")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
