// internal/handlers/health.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rsandford/stockpile/internal/core/ports"
	"github.com/rsandford/stockpile/internal/core/services"
)

// HealthHandler reports service health
type HealthHandler struct {
	service   *services.InventoryService
	cache     ports.SnapshotCache // nil when cache is disabled
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.InventoryService, cache ports.SnapshotCache, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service:   service,
		cache:     cache,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// ServiceInfo describes one dependency's condition
type ServiceInfo struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the health endpoint payload
type HealthResponse struct {
	Status   string                 `json:"status"`
	Uptime   string                 `json:"uptime"`
	Sync     services.Status        `json:"sync"`
	Services map[string]ServiceInfo `json:"services"`
}

// Health handles GET /health. The service is degraded, not down, when
// the cache is unreachable; the in-memory collection still serves.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	checks := map[string]ServiceInfo{}

	if h.cache != nil {
		checks["cache"] = h.checkCache(ctx)
		if checks["cache"].Status != "healthy" {
			status = "degraded"
		}
	}

	syncStatus := h.service.Status()
	if syncStatus.State != services.StateReady && syncStatus.State != services.StateWriting {
		status = "degraded"
	}

	respondJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:   status,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Sync:     syncStatus,
		Services: checks,
	})
}

// Readiness handles GET /ready. Not ready until the initial load is done.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	syncStatus := h.service.Status()
	if syncStatus.State == services.StateUninitialized || syncStatus.State == services.StateLoading {
		respondJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"state":  syncStatus.StateName,
		})
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) checkCache(ctx context.Context) ServiceInfo {
	if err := h.cache.Ping(ctx); err != nil {
		return ServiceInfo{Status: "unhealthy", Message: err.Error()}
	}
	return ServiceInfo{Status: "healthy"}
}
