// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/services"
)

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

// statusForError maps service errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrImportFormat),
		errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusConflict
	case domain.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNetworkFailure),
		errors.Is(err, domain.ErrBackendRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// persistWarning returns the warning message when err reports a
// mutation that was applied but not written out, and ok for plain
// success or warning cases.
func persistWarning(err error) (warning string, ok bool) {
	if err == nil {
		return "", true
	}
	var w *services.PersistWarning
	if errors.As(err, &w) {
		return w.Error(), true
	}
	return "", false
}
