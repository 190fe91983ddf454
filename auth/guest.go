// sbbs/auth/guest.go
package auth

import "sbbs/models"

// GuestAuthenticator is used when login is disabled: everyone is anonymous
// and the login flows are no-ops.
type GuestAuthenticator struct{}

func NewGuestAuthenticator() *GuestAuthenticator { return &GuestAuthenticator{} }

func (g *GuestAuthenticator) CurrentUser(r *Request) *models.Identity { return nil }

func (g *GuestAuthenticator) SupportsLoginRedirect() bool { return false }

func (g *GuestAuthenticator) SupportsPasswordLogin() bool { return false }

func (g *GuestAuthenticator) InitiateLogin(r *Request) (string, error) { return "", nil }

func (g *GuestAuthenticator) HandleCallback(r *Request) *models.Identity { return nil }

func (g *GuestAuthenticator) Logout(r *Request) {}

func (g *GuestAuthenticator) LoginViewData() map[string]any {
	return map[string]any{"message": "login is disabled"}
}
