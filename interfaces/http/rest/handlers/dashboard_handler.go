package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"blog-backend/application/services"
	"blog-backend/pkg/common"
)

// DashboardHandler serves the aggregation endpoints.
type DashboardHandler struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Stats returns the headline figures with their period-over-period
// change.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.GetStats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, stats)
}

// Analytics returns the per-day series for ?period (7d, 30d or 90d;
// default 30d).
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	period := services.AnalyticsPeriod(r.URL.Query().Get("period"))

	analytics, err := h.dashboard.GetAnalytics(r.Context(), period)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, analytics)
}
