// sbbs/handlers/app.go
package handlers

import (
	"log/slog"
	"net/http"

	"sbbs/auth"
	"sbbs/config"
	"sbbs/database"
	"sbbs/models"
	"sbbs/services"
)

// App is the dependency surface handlers pull from. main.go's Application
// and the test harness both satisfy it.
type App interface {
	Logger() *slog.Logger
	Config() *config.Config
	Boards() *services.BoardService
	Threads() *services.ThreadService
	Auth() *auth.Manager
	Sessions() *auth.SessionStore
	Password() *services.PasswordAuthService
	RateLimiter() *models.RateLimiter
	Backups() *database.BackupService
}

// HandlerFunc is an http.HandlerFunc with the app dependency made explicit.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, app App)

// MakeHandler adapts a HandlerFunc for the router.
func MakeHandler(app App, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, app)
	}
}

// authRequest loads the visitor's session, wraps the request, and resolves
// the current user into the request's user slot.
func authRequest(w http.ResponseWriter, r *http.Request, app App) *auth.Request {
	sess := app.Sessions().Load(w, r)
	req := auth.NewRequest(r, sess)
	req.SetUser(app.Auth().User(req))
	return req
}
