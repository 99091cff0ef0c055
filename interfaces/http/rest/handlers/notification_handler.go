package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blog-backend/application/ports"
	"blog-backend/application/services"
	"blog-backend/pkg/common"
)

// NotificationHandler serves the caller's notification endpoints.
type NotificationHandler struct {
	notifications *services.NotificationService
	maxPageSize   int
	logger        *zap.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notifications *services.NotificationService, maxPageSize int, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, maxPageSize: maxPageSize, logger: logger}
}

// List returns the caller's notifications, newest first; ?unread=true
// restricts to unread ones.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r, h.maxPageSize)

	notifications, err := h.notifications.List(r.Context(), subjectID(r), ports.NotificationQuery{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      params.PageSize,
		Offset:     params.Offset(),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, notifications)
}

// UnreadCount returns the caller's unread notification count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.CountUnread(r.Context(), subjectID(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkRead transitions one notification to read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notification, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "notificationID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, notification)
}

// MarkAllRead transitions every unread notification of the caller
// and reports how many were affected.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.MarkAllRead(r.Context(), subjectID(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]int{"updated": count})
}

// Delete removes one notification.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteAll removes every notification of the caller.
func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.DeleteAllForUser(r.Context(), subjectID(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]int{"deleted": count})
}
