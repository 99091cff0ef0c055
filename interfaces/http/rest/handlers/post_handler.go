package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/application/services"
	"blog-backend/domain"
	"blog-backend/pkg/common"
)

// PostHandler serves the post endpoints, including the publication
// lifecycle and the view counter.
type PostHandler struct {
	posts       *services.PostService
	comments    *services.CommentService
	maxPageSize int
	logger      *zap.Logger
}

// NewPostHandler creates a new post handler.
func NewPostHandler(posts *services.PostService, comments *services.CommentService, maxPageSize int, logger *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, maxPageSize: maxPageSize, logger: logger}
}

type createPostRequest struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Slug          string          `json:"slug" validate:"required,max=200"`
	Content       json.RawMessage `json:"content" validate:"required"`
	CategoryID    string          `json:"categoryId" validate:"required"`
	SubcategoryID *string         `json:"subcategoryId"`
	Status        string          `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

type updatePostRequest struct {
	Title         *string         `json:"title" validate:"omitempty,max=200"`
	Slug          *string         `json:"slug" validate:"omitempty,max=200"`
	Content       json.RawMessage `json:"content"`
	CategoryID    *string         `json:"categoryId"`
	SubcategoryID *string         `json:"subcategoryId"`
	Status        *string         `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// Create adds a post authored by the caller.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), domain.PostDraft{
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		AuthorID:      subjectID(r),
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Status:        domain.PostStatus(req.Status),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, post)
}

// Get returns one post by id.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// GetBySlug returns the post holding a slug.
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// List returns a filtered page of posts. Filters come from the
// status, author and category query parameters.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r, h.maxPageSize)
	filter := ports.PostListFilter{
		Status:     domain.PostStatus(r.URL.Query().Get("status")),
		AuthorID:   r.URL.Query().Get("author"),
		CategoryID: r.URL.Query().Get("category"),
	}

	page, err := h.posts.List(r.Context(), filter, ports.ListOptions{
		Limit:  params.PageSize,
		Offset: params.Offset(),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondWithMeta(w, http.StatusOK, page.Items, &common.MetaInfo{
		Pagination: common.BuildPaginationMeta(params, page.Total),
	})
}

// Update applies a partial update to a post.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	patch := domain.PostPatch{
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
	}
	if req.Status != nil {
		status := domain.PostStatus(*req.Status)
		patch.Status = &status
	}

	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "postID"), patch)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// Publish transitions a post to PUBLISHED.
func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Publish(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// Archive transitions a post to ARCHIVED.
func (h *PostHandler) Archive(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Archive(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// RevertToDraft transitions a post back to DRAFT.
func (h *PostHandler) RevertToDraft(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.RevertToDraft(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// RecordView bumps the post's view counter.
func (h *PostHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.RecordView(r.Context(), chi.URLParam(r, "postID")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// Delete removes a post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "postID")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListComments returns the comments on a post, oldest first.
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	Content  string  `json:"content" validate:"required,max=5000"`
	ParentID *string `json:"parentId"`
}

// CreateComment adds a comment on a post by the caller.
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), domain.CommentDraft{
		Content:  req.Content,
		AuthorID: subjectID(r),
		PostID:   chi.URLParam(r, "postID"),
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, comment)
}
