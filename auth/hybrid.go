// sbbs/auth/hybrid.go
package auth

import "sbbs/models"

// HybridAuthenticator composes a session/password authenticator with an
// optional secondary strategy (typically OAuth): session lookup wins, the
// secondary is the fallthrough. Delegation, not inheritance.
type HybridAuthenticator struct {
	session   *SessionAuthenticator
	secondary Authenticator
}

func NewHybridAuthenticator(session *SessionAuthenticator, secondary Authenticator) *HybridAuthenticator {
	return &HybridAuthenticator{session: session, secondary: secondary}
}

func (h *HybridAuthenticator) CurrentUser(r *Request) *models.Identity {
	if user := h.session.CurrentUser(r); user != nil {
		return user
	}
	if h.secondary != nil {
		return h.secondary.CurrentUser(r)
	}
	return nil
}

func (h *HybridAuthenticator) SupportsLoginRedirect() bool {
	return h.secondary != nil && h.secondary.SupportsLoginRedirect()
}

func (h *HybridAuthenticator) SupportsPasswordLogin() bool {
	return h.session.SupportsPasswordLogin()
}

func (h *HybridAuthenticator) InitiateLogin(r *Request) (string, error) {
	if h.secondary != nil && h.secondary.SupportsLoginRedirect() {
		return h.secondary.InitiateLogin(r)
	}
	return h.session.InitiateLogin(r)
}

func (h *HybridAuthenticator) HandleCallback(r *Request) *models.Identity {
	if h.secondary != nil {
		if user := h.secondary.HandleCallback(r); user != nil {
			return user
		}
	}
	return h.session.HandleCallback(r)
}

func (h *HybridAuthenticator) Logout(r *Request) {
	h.session.Logout(r)
	if h.secondary != nil {
		h.secondary.Logout(r)
	}
}

func (h *HybridAuthenticator) LoginViewData() map[string]any {
	data := h.session.LoginViewData()
	if h.secondary != nil {
		data["redirect"] = h.secondary.LoginViewData()
	}
	return data
}

// Session exposes the wrapped session authenticator for the password flow.
func (h *HybridAuthenticator) Session() *SessionAuthenticator {
	return h.session
}
