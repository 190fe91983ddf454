// sbbs/auth/oauth.go
package auth

import (
	"log/slog"

	"sbbs/models"

	"github.com/google/uuid"
)

const (
	oauthStateKey  = "sbbs_oauth_state"
	oauthIDKey     = "sbbs_oauth_id"
	oauthNameKey   = "sbbs_oauth_name"
	oauthEmailKey  = "sbbs_oauth_email"
	oauthAvatarKey = "sbbs_oauth_avatar"
)

// IdentityProvider is the external OAuth collaborator: it builds the
// authorization URL and exchanges an authorization code for a profile. The
// provider SDK's internals live behind this interface.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(code string) (*models.Identity, error)
}

// OAuthAuthenticator drives a redirect login flow against an external
// identity provider, caching the resulting identity in the session.
type OAuthAuthenticator struct {
	provider IdentityProvider
	logger   *slog.Logger
}

func NewOAuthAuthenticator(provider IdentityProvider, logger *slog.Logger) *OAuthAuthenticator {
	return &OAuthAuthenticator{provider: provider, logger: logger}
}

func (o *OAuthAuthenticator) CurrentUser(r *Request) *models.Identity {
	id, ok := r.Session().Get(oauthIDKey)
	if !ok || id == "" {
		return nil
	}
	name, _ := r.Session().Get(oauthNameKey)
	email, _ := r.Session().Get(oauthEmailKey)
	avatar, _ := r.Session().Get(oauthAvatarKey)
	return &models.Identity{ID: id, Name: name, Email: email, AvatarURL: avatar}
}

func (o *OAuthAuthenticator) SupportsLoginRedirect() bool { return true }

func (o *OAuthAuthenticator) SupportsPasswordLogin() bool { return false }

// InitiateLogin stores a fresh state token in the session and returns the
// provider's authorization URL.
func (o *OAuthAuthenticator) InitiateLogin(r *Request) (string, error) {
	state := uuid.New().String()
	r.Session().Set(oauthStateKey, state)
	return o.provider.AuthCodeURL(state), nil
}

// HandleCallback validates the returned state against the session, then
// exchanges the authorization code for a profile. Any mismatch or exchange
// failure resolves to no user.
func (o *OAuthAuthenticator) HandleCallback(r *Request) *models.Identity {
	expected, ok := r.Session().Get(oauthStateKey)
	state := r.Query("state")
	if !ok || expected == "" || state != expected {
		r.Session().Delete(oauthStateKey)
		o.logger.Warn("OAuth callback with mismatched state")
		return nil
	}

	code := r.Query("code")
	if code == "" {
		return nil
	}

	identity, err := o.provider.Exchange(code)
	if err != nil {
		o.logger.Warn("OAuth code exchange failed", "error", err)
		return nil
	}

	sess := r.Session()
	sess.Set(oauthIDKey, identity.ID)
	sess.Set(oauthNameKey, identity.Name)
	sess.Set(oauthEmailKey, identity.Email)
	sess.Set(oauthAvatarKey, identity.AvatarURL)
	sess.Delete(oauthStateKey)

	return identity
}

func (o *OAuthAuthenticator) Logout(r *Request) {
	sess := r.Session()
	for _, key := range []string{oauthIDKey, oauthNameKey, oauthEmailKey, oauthAvatarKey, oauthStateKey} {
		sess.Delete(key)
	}
}

func (o *OAuthAuthenticator) LoginViewData() map[string]any {
	return map[string]any{"loginRoute": "/auth/redirect"}
}
