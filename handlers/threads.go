// sbbs/handlers/threads.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"sbbs/models"

	"github.com/go-chi/chi/v5"
)

type threadJSON struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PostCount int        `json:"post_count"`
	Posts     []postJSON `json:"posts,omitempty"`
}

type postJSON struct {
	ID         int64     `json:"id"`
	ThreadID   int64     `json:"thread_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

func toThreadJSON(t *models.Thread) threadJSON {
	out := threadJSON{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		PostCount: t.PostCount,
	}
	for _, p := range t.Posts {
		out.Posts = append(out.Posts, postJSON{
			ID:         p.ID,
			ThreadID:   p.ThreadID,
			AuthorName: p.AuthorName,
			Body:       p.Body,
			CreatedAt:  p.CreatedAt,
		})
	}
	return out
}

func HandleListThreads(w http.ResponseWriter, r *http.Request, app App) {
	threads, err := app.Threads().ListThreads(chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err, app)
		return
	}
	out := make([]threadJSON, 0, len(threads))
	for i := range threads {
		out = append(out, toThreadJSON(&threads[i]))
	}
	respondJSON(w, http.StatusOK, out, app)
}

func HandleGetThread(w http.ResponseWriter, r *http.Request, app App) {
	threadID, err := pathID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	thread, err := app.Threads().GetThread(chi.URLParam(r, "slug"), threadID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, toThreadJSON(thread), app)
}

func HandleCreateThread(w http.ResponseWriter, r *http.Request, app App) {
	req := authRequest(w, r, app)

	threadID, err := app.Threads().CreateThread(
		req.User(),
		chi.URLParam(r, "slug"),
		r.FormValue("title"),
		r.FormValue("author_name"),
		r.FormValue("body"),
	)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"thread_id": threadID}, app)
}

func HandleAddPost(w http.ResponseWriter, r *http.Request, app App) {
	req := authRequest(w, r, app)

	threadID, err := pathID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Threads().AddPost(
		req.User(),
		chi.URLParam(r, "slug"),
		threadID,
		r.FormValue("author_name"),
		r.FormValue("body"),
	); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "ok"}, app)
}

func HandleUpdatePost(w http.ResponseWriter, r *http.Request, app App) {
	req := authRequest(w, r, app)

	threadID, err := pathID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	postID, err := pathID(r, "postID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Threads().UpdatePost(
		req.User(),
		chi.URLParam(r, "slug"),
		threadID,
		postID,
		r.FormValue("author_name"),
		r.FormValue("body"),
	); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, app)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Validation("a numeric " + name + " is required")
	}
	return id, nil
}
