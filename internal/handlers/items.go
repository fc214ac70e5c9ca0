// internal/handlers/items.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/query"
	"github.com/rsandford/stockpile/internal/core/services"
)

// ItemsHandler handles record collection HTTP requests
type ItemsHandler struct {
	service *services.InventoryService
	logger  *slog.Logger
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(service *services.InventoryService, logger *slog.Logger) *ItemsHandler {
	return &ItemsHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "items")),
	}
}

// MutationResponse reports the outcome of a write. Warning is set when
// the change was applied in memory but could not be written out.
type MutationResponse struct {
	Item      *domain.Item `json:"item,omitempty"`
	Deleted   *bool        `json:"deleted,omitempty"`
	Persisted bool         `json:"persisted"`
	Warning   string       `json:"warning,omitempty"`
}

// ListItems handles GET /api/v1/items
func (h *ItemsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	params := query.Params{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}

	items := h.service.List(params)
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
		"sort":  h.service.SortState(),
	})
}

// GetItem handles GET /api/v1/items/{id}
func (h *ItemsHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.service.Get(id)
	if err != nil {
		respondError(w, h.logger, statusForError(err), "Item not found")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}

// CreateItem handles POST /api/v1/items
func (h *ItemsHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rec domain.PlainRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.Create(ctx, rec)
	warning, ok := persistWarning(err)
	if !ok {
		h.logger.ErrorContext(ctx, "failed to create item",
			slog.String("error", err.Error()))
		respondError(w, h.logger, statusForError(err), err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, MutationResponse{
		Item:      &item,
		Persisted: warning == "",
		Warning:   warning,
	})
}

// UpdateItem handles PUT /api/v1/items/{id}
func (h *ItemsHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var rec domain.PlainRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.Update(ctx, id, rec)
	warning, ok := persistWarning(err)
	if !ok {
		h.logger.ErrorContext(ctx, "failed to update item",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		respondError(w, h.logger, statusForError(err), err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, MutationResponse{
		Item:      &item,
		Persisted: warning == "",
		Warning:   warning,
	})
}

// DeleteItem handles DELETE /api/v1/items/{id}?confirm=true
func (h *ItemsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	deleted, err := h.service.Delete(ctx, id, confirmed)
	warning, ok := persistWarning(err)
	if !ok {
		h.logger.WarnContext(ctx, "delete rejected",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		respondError(w, h.logger, statusForError(err), err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, MutationResponse{
		Deleted:   &deleted,
		Persisted: warning == "",
		Warning:   warning,
	})
}

// ToggleSort handles POST /api/v1/items/sort
func (h *ItemsHandler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Column string `json:"column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Column == "" {
		respondError(w, h.logger, http.StatusBadRequest, "A sort column is required")
		return
	}

	state, err := h.service.ToggleSort(ctx, req.Column)
	warning, ok := persistWarning(err)
	if !ok {
		respondError(w, h.logger, statusForError(err), err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"sort":      state,
		"persisted": warning == "",
		"warning":   warning,
	})
}
