// sbbs/auth/sessionauth.go
package auth

import (
	"log/slog"
	"strconv"

	"sbbs/database"
	"sbbs/models"
)

const sessionUserIDKey = "sbbs_user_id"

// SessionAuthenticator resolves the user from a session-stored user id,
// re-validated against the user store on every call. A stale id (user
// deleted since login) clears the session and resolves to no user.
type SessionAuthenticator struct {
	users  *database.UserStore
	logger *slog.Logger
}

func NewSessionAuthenticator(users *database.UserStore, logger *slog.Logger) *SessionAuthenticator {
	return &SessionAuthenticator{users: users, logger: logger}
}

func (s *SessionAuthenticator) CurrentUser(r *Request) *models.Identity {
	raw, ok := r.Session().Get(sessionUserIDKey)
	if !ok || raw == "" {
		return nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.Session().Delete(sessionUserIDKey)
		return nil
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		if models.IsNotFound(err) {
			r.Session().Delete(sessionUserIDKey)
		} else {
			s.logger.Error("Failed to resolve session user", "user_id", id, "error", err)
		}
		return nil
	}

	return &models.Identity{
		ID:    strconv.FormatInt(user.ID, 10),
		Name:  user.Name,
		Email: user.Email,
	}
}

func (s *SessionAuthenticator) SupportsLoginRedirect() bool { return false }

func (s *SessionAuthenticator) SupportsPasswordLogin() bool { return true }

// InitiateLogin is a no-op: login happens through the password form flow.
func (s *SessionAuthenticator) InitiateLogin(r *Request) (string, error) { return "", nil }

func (s *SessionAuthenticator) HandleCallback(r *Request) *models.Identity {
	return s.CurrentUser(r)
}

func (s *SessionAuthenticator) Logout(r *Request) {
	r.Session().Delete(sessionUserIDKey)
}

func (s *SessionAuthenticator) LoginViewData() map[string]any {
	return map[string]any{
		"password": map[string]any{
			"enabled":       true,
			"action":        "/auth/login",
			"registerRoute": "/auth/register",
		},
	}
}

// LoginUserID records a successful password login in the session. Called by
// the password auth service.
func (s *SessionAuthenticator) LoginUserID(sess Session, userID int64) {
	sess.Set(sessionUserIDKey, strconv.FormatInt(userID, 10))
}
