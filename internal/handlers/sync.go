// internal/handlers/sync.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/services"
)

// SyncHandler exposes manual sync and sync status
type SyncHandler struct {
	service *services.InventoryService
	logger  *slog.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(service *services.InventoryService, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "sync")),
	}
}

// SyncNow handles POST /api/v1/sync. It writes the current collection
// out immediately. A stale-token conflict comes back as 409; the
// caller re-syncs after deciding whose data wins.
func (h *SyncHandler) SyncNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.SyncNow(ctx); err != nil {
		level := slog.LevelError
		if domain.IsConflict(err) {
			level = slog.LevelWarn
		}
		h.logger.Log(ctx, level, "manual sync failed",
			slog.String("error", err.Error()))
		respondError(w, h.logger, statusForError(err), err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, h.service.Status())
}

// Status handles GET /api/v1/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.service.Status())
}
