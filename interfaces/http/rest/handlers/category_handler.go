package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/application/services"
	"blog-backend/domain"
	"blog-backend/pkg/common"
)

// CategoryHandler serves the category endpoints.
type CategoryHandler struct {
	categories  *services.CategoryService
	maxPageSize int
	logger      *zap.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories *services.CategoryService, maxPageSize int, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, maxPageSize: maxPageSize, logger: logger}
}

type createCategoryRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Slug     string  `json:"slug" validate:"required,max=120"`
	ParentID *string `json:"parentId"`
	IsActive *bool   `json:"isActive"`
}

type updateCategoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Slug     *string `json:"slug" validate:"omitempty,max=120"`
	ParentID *string `json:"parentId"`
	IsActive *bool   `json:"isActive"`
}

// Create adds a category or subcategory.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	category, err := h.categories.Create(r.Context(), domain.CategoryDraft{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, category)
}

// Get returns one category by id.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Get(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, category)
}

// GetBySlug returns the category holding a slug.
func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, category)
}

// ListMain returns the categories with no parent.
func (h *CategoryHandler) ListMain(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListMain(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, categories)
}

// Subcategories returns the direct children of a category.
func (h *CategoryHandler) Subcategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.Subcategories(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, categories)
}

// List returns a page of all categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r, h.maxPageSize)

	page, err := h.categories.List(r.Context(), ports.ListOptions{
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

// Update applies a partial update to a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	category, err := h.categories.Update(r.Context(), chi.URLParam(r, "categoryID"), domain.CategoryPatch{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, category)
}

// Delete removes a childless category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
