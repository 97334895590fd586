package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, map[string]any{"error": message}, status)
}

// writeDomainError maps the error taxonomy onto status codes: NotFound to
// 404, PermissionDenied to 403, InvalidInput to 400, anything else to 500
// behind a generic message.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrPermissionDenied):
		writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error(fallback, slog.Any("err", err))
		writeError(w, fallback, http.StatusInternalServerError)
	}
}
