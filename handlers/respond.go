// sbbs/handlers/respond.go
package handlers

import (
	"encoding/json"
	"net/http"

	"sbbs/models"
)

func respondJSON(w http.ResponseWriter, status int, payload any, app App) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.Logger().Error("Failed to encode JSON response", "error", err)
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Validation, not-found, and conflict messages are safe to show; anything
// else is logged with its cause and masked as a generic server error.
func respondError(w http.ResponseWriter, err error, app App) {
	switch {
	case models.IsValidation(err):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()}, app)
	case models.IsNotFound(err):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()}, app)
	case models.IsConflict(err):
		respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()}, app)
	case models.IsStorage(err):
		app.Logger().Error("Storage failure handling request", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"}, app)
	default:
		app.Logger().Error("Unexpected error handling request", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"}, app)
	}
}
