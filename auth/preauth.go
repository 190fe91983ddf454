// sbbs/auth/preauth.go
package auth

import "sbbs/models"

// PreAuthenticatedAuthenticator wraps a statically supplied identity. Used
// when an embedding host has already authenticated the caller; login and
// logout belong to the host, so they are no-ops here.
type PreAuthenticatedAuthenticator struct {
	user *models.Identity
}

func NewPreAuthenticatedAuthenticator(user *models.Identity) *PreAuthenticatedAuthenticator {
	return &PreAuthenticatedAuthenticator{user: user}
}

func (p *PreAuthenticatedAuthenticator) CurrentUser(r *Request) *models.Identity { return p.user }

func (p *PreAuthenticatedAuthenticator) SupportsLoginRedirect() bool { return false }

func (p *PreAuthenticatedAuthenticator) SupportsPasswordLogin() bool { return false }

func (p *PreAuthenticatedAuthenticator) InitiateLogin(r *Request) (string, error) { return "", nil }

func (p *PreAuthenticatedAuthenticator) HandleCallback(r *Request) *models.Identity { return p.user }

func (p *PreAuthenticatedAuthenticator) Logout(r *Request) {}

func (p *PreAuthenticatedAuthenticator) LoginViewData() map[string]any {
	return map[string]any{"message": "authenticated by the embedding system"}
}
