// sbbs/handlers/boards.go
package handlers

import (
	"net/http"
	"time"

	"sbbs/models"

	"github.com/go-chi/chi/v5"
)

type boardJSON struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBoardJSON(b *models.Board) boardJSON {
	out := boardJSON{
		Slug:      b.Slug,
		Title:     b.Title,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Description.Valid {
		desc := b.Description.String
		out.Description = &desc
	}
	return out
}

func HandleListBoards(w http.ResponseWriter, r *http.Request, app App) {
	boards, err := app.Boards().ListBoards()
	if err != nil {
		respondError(w, err, app)
		return
	}
	out := make([]boardJSON, 0, len(boards))
	for i := range boards {
		out = append(out, toBoardJSON(&boards[i]))
	}
	respondJSON(w, http.StatusOK, out, app)
}

func HandleGetBoard(w http.ResponseWriter, r *http.Request, app App) {
	board, err := app.Boards().GetBoard(chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, toBoardJSON(board), app)
}

func HandleCreateBoard(w http.ResponseWriter, r *http.Request, app App) {
	req := authRequest(w, r, app)

	// Board creation is open to users only when the configuration says so;
	// otherwise it stays an admin (LAN) operation.
	if !app.Config().AllowUserBoardCreate {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "board creation is disabled"}, app)
		return
	}
	if app.Config().RequireLogin && req.User() == nil {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "login required"}, app)
		return
	}

	board, err := app.Boards().CreateBoard(
		r.FormValue("title"),
		r.FormValue("slug"),
		r.FormValue("description"),
	)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusCreated, toBoardJSON(board), app)
}
