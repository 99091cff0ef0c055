package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"blog-backend/pkg/common"
)

// Pinger reports whether the bound storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes. Readiness
// reports the bound storage provider and whether it answers a ping.
type HealthHandler struct {
	provider string
	store    Pinger
	logger   *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(provider string, store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{provider: provider, store: store, logger: logger}
}

// Live reports process liveness.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports whether the bound backend is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	body := map[string]string{
		"status":   "ready",
		"provider": h.provider,
		"database": "reachable",
	}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness ping failed",
			zap.String("provider", h.provider),
			zap.Error(err),
		)
		body["status"] = "degraded"
		body["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	common.RespondJSON(w, status, body)
}
