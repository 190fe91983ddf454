// sbbs/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func HandleUpdateBoard(w http.ResponseWriter, r *http.Request, app App) {
	board, err := app.Boards().UpdateBoard(
		chi.URLParam(r, "slug"),
		r.FormValue("title"),
		r.FormValue("description"),
	)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, toBoardJSON(board), app)
}

func HandleDeleteBoard(w http.ResponseWriter, r *http.Request, app App) {
	if err := app.Boards().DeleteBoard(chi.URLParam(r, "slug")); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"}, app)
}

// HandleBackup snapshots the system database and every board database.
func HandleBackup(w http.ResponseWriter, r *http.Request, app App) {
	if app.Backups() == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "backups are not configured"}, app)
		return
	}

	stored, err := app.Backups().BackupAll()
	if err != nil {
		app.Logger().Error("Backup failed", "error", err, "completed", len(stored))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "backup failed"}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stored": stored}, app)
}
