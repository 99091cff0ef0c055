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

// UserHandler serves the user endpoints.
type UserHandler struct {
	users       *services.UserService
	maxPageSize int
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *services.UserService, maxPageSize int, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, maxPageSize: maxPageSize, logger: logger}
}

type createUserRequest struct {
	Email     string `json:"email" validate:"omitempty,email"`
	Name      string `json:"name" validate:"required,max=120"`
	Role      string `json:"role" validate:"omitempty,oneof=SUBSCRIBER AUTHOR ADMIN MODERATOR"`
	Bio       string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Name      *string `json:"name" validate:"omitempty,max=120"`
	Role      *string `json:"role" validate:"omitempty,oneof=SUBSCRIBER AUTHOR ADMIN MODERATOR"`
	IsActive  *bool   `json:"isActive"`
	IsBanned  *bool   `json:"isBanned"`
	BanReason *string `json:"banReason" validate:"omitempty,max=500"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

// Register creates the caller's user record on first sign-in. The
// record id is always the token subject, never a client-chosen id.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, err := h.users.Create(r.Context(), domain.UserDraft{
		ID:        subjectID(r),
		Email:     req.Email,
		Name:      req.Name,
		Role:      domain.Role(req.Role),
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, user)
}

// Me returns the caller's own record.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), subjectID(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// Get returns one user by id.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// List returns a page of users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r, h.maxPageSize)

	page, err := h.users.List(r.Context(), ports.ListOptions{
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

// Update applies a partial update to a user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	patch := domain.UserPatch{
		Email:     req.Email,
		Name:      req.Name,
		IsActive:  req.IsActive,
		IsBanned:  req.IsBanned,
		BanReason: req.BanReason,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "userID"), patch)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// Delete removes a user record.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
