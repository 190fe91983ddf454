// sbbs/auth/auth.go
package auth

import "sbbs/models"

// Authenticator is the strategy behind the auth manager. Implementations
// fail closed: any internal error resolves to "no user" rather than
// propagating.
type Authenticator interface {
	// CurrentUser resolves the identity for this request, or nil.
	CurrentUser(r *Request) *models.Identity
	// SupportsLoginRedirect reports whether InitiateLogin yields a
	// redirect URL (OAuth-style flows).
	SupportsLoginRedirect() bool
	// SupportsPasswordLogin reports whether a password form flow applies.
	SupportsPasswordLogin() bool
	// InitiateLogin begins a login flow. For redirect-based strategies the
	// returned string is the URL to send the client to; otherwise "".
	InitiateLogin(r *Request) (string, error)
	// HandleCallback completes a redirect-based flow, or re-resolves the
	// current user for strategies without one.
	HandleCallback(r *Request) *models.Identity
	Logout(r *Request)
	// LoginViewData describes the available login affordances for the
	// front end.
	LoginViewData() map[string]any
}

// Manager wraps the configured authenticator strategy.
type Manager struct {
	authenticator Authenticator
}

func NewManager(a Authenticator) *Manager {
	return &Manager{authenticator: a}
}

func (m *Manager) User(r *Request) *models.Identity {
	return m.authenticator.CurrentUser(r)
}

func (m *Manager) Check(r *Request) bool {
	return m.User(r) != nil
}

func (m *Manager) SupportsLoginRedirect() bool {
	return m.authenticator.SupportsLoginRedirect()
}

func (m *Manager) SupportsPasswordLogin() bool {
	return m.authenticator.SupportsPasswordLogin()
}

func (m *Manager) InitiateLogin(r *Request) (string, error) {
	return m.authenticator.InitiateLogin(r)
}

func (m *Manager) HandleCallback(r *Request) *models.Identity {
	return m.authenticator.HandleCallback(r)
}

func (m *Manager) Logout(r *Request) {
	m.authenticator.Logout(r)
}

func (m *Manager) LoginViewData() map[string]any {
	return m.authenticator.LoginViewData()
}
