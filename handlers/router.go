// sbbs/handlers/router.go
package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(app App) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(RequestLogger(app))
	mux.Use(middleware.Recoverer)

	mux.Route("/api/boards", func(r chi.Router) {
		r.Get("/", MakeHandler(app, HandleListBoards))
		r.With(RateLimit(app)).Post("/", MakeHandler(app, HandleCreateBoard))
		r.Get("/{slug}", MakeHandler(app, HandleGetBoard))

		r.Route("/{slug}/threads", func(r chi.Router) {
			r.Get("/", MakeHandler(app, HandleListThreads))
			r.With(RateLimit(app)).Post("/", MakeHandler(app, HandleCreateThread))
			r.Get("/{threadID}", MakeHandler(app, HandleGetThread))
			r.With(RateLimit(app)).Post("/{threadID}/posts", MakeHandler(app, HandleAddPost))
			r.With(RateLimit(app)).Put("/{threadID}/posts/{postID}", MakeHandler(app, HandleUpdatePost))
		})
	})

	mux.Route("/auth", func(r chi.Router) {
		r.Get("/login", MakeHandler(app, HandleLoginView))
		r.Post("/login", MakeHandler(app, HandlePasswordLogin))
		r.Post("/register", MakeHandler(app, HandleRegister))
		r.Get("/setup", MakeHandler(app, HandleSetupView))
		r.Post("/setup", MakeHandler(app, HandleCompleteSetup))
		r.Get("/redirect", MakeHandler(app, HandleLoginRedirect))
		r.Get("/callback", MakeHandler(app, HandleCallback))
		r.Post("/logout", MakeHandler(app, HandleLogout))
		r.Get("/me", MakeHandler(app, HandleMe))
	})

	mux.Route("/admin", func(r chi.Router) {
		r.Use(RequireLAN)
		r.Put("/boards/{slug}", MakeHandler(app, HandleUpdateBoard))
		r.Delete("/boards/{slug}", MakeHandler(app, HandleDeleteBoard))
		r.Post("/backup", MakeHandler(app, HandleBackup))
	})

	return mux
}
