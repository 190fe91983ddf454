// sbbs/handlers/auth.go
package handlers

import (
	"net/http"
)

func HandleLoginView(w http.ResponseWriter, r *http.Request, app App) {
	respondJSON(w, http.StatusOK, app.Auth().LoginViewData(), app)
}

func HandleMe(w http.ResponseWriter, r *http.Request, app App) {
	req := authRequest(w, r, app)
	if req.User() == nil {
		respondJSON(w, http.StatusOK, map[string]any{"user": nil}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": req.User()}, app)
}

// HandlePasswordLogin runs the password form flow. Failures are uniform:
// no hint about which of user, hash, or password was wrong.
func HandlePasswordLogin(w http.ResponseWriter, r *http.Request, app App) {
	if app.Password() == nil || !app.Auth().SupportsPasswordLogin() {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "password login is not enabled"}, app)
		return
	}

	req := authRequest(w, r, app)
	if app.Password().AttemptLogin(req.Session(), r.FormValue("email"), r.FormValue("password")) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, app)
		return
	}
	respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"}, app)
}

// HandleRegister starts password setup: create-or-update the account and
// mail out a setup link. Responds identically whether or not the email was
// already registered.
func HandleRegister(w http.ResponseWriter, r *http.Request, app App) {
	if app.Password() == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "registration is not enabled"}, app)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	buildURL := func(token string) string {
		return scheme + "://" + host + "/auth/setup?token=" + token
	}

	if err := app.Password().RequestPasswordSetup(r.FormValue("name"), r.FormValue("email"), buildURL); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "setup link sent"}, app)
}

func HandleSetupView(w http.ResponseWriter, r *http.Request, app App) {
	if app.Password() == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "registration is not enabled"}, app)
		return
	}

	user, err := app.Password().FindPasswordToken(r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"name": user.Name, "email": user.Email}, app)
}

func HandleCompleteSetup(w http.ResponseWriter, r *http.Request, app App) {
	if app.Password() == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "registration is not enabled"}, app)
		return
	}

	req := authRequest(w, r, app)
	if app.Password().CompletePasswordSetup(req.Session(), r.FormValue("token"), r.FormValue("password")) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, app)
		return
	}
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid or expired setup token"}, app)
}

// HandleLoginRedirect starts a redirect-based (OAuth) login flow.
func HandleLoginRedirect(w http.ResponseWriter, r *http.Request, app App) {
	if !app.Auth().SupportsLoginRedirect() {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "redirect login is not enabled"}, app)
		return
	}

	req := authRequest(w, r, app)
	url, err := app.Auth().InitiateLogin(req)
	if err != nil {
		respondError(w, err, app)
		return
	}
	if url == "" {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "redirect login is not enabled"}, app)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func HandleCallback(w http.ResponseWriter, r *http.Request, app App) {
	req := authRequest(w, r, app)
	user := app.Auth().HandleCallback(req)
	if user == nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "login failed"}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user}, app)
}

func HandleLogout(w http.ResponseWriter, r *http.Request, app App) {
	req := authRequest(w, r, app)
	app.Auth().Logout(req)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, app)
}
