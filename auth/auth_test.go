// sbbs/auth/auth_test.go
package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"sbbs/database"
	"sbbs/models"
)

func newTestUserStore(t *testing.T) *database.UserStore {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	dir, err := os.MkdirTemp("", "sbbs_test_auth")
	if err != nil {
		t.Fatalf("Failed to create temp storage dir: %v", err)
	}
	manager, err := database.NewManager(dir, logger)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() {
		manager.Close()
		os.RemoveAll(dir)
	})
	return database.NewUserStore(manager, logger)
}

func newTestRequest(t *testing.T, target string) *Request {
	t.Helper()
	store := NewSessionStore(time.Hour, 24*time.Hour)
	return NewRequest(httptest.NewRequest("GET", target, nil), store.Session("test-session"))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestGuestAuthenticator(t *testing.T) {
	guest := NewGuestAuthenticator()
	r := newTestRequest(t, "/")

	if user := guest.CurrentUser(r); user != nil {
		t.Errorf("Expected no user for a guest, got %+v", user)
	}
	if guest.SupportsLoginRedirect() || guest.SupportsPasswordLogin() {
		t.Error("Expected the guest authenticator to support no login flow")
	}
}

func TestSessionAuthenticatorRoundTrip(t *testing.T) {
	users := newTestUserStore(t)
	sa := NewSessionAuthenticator(users, discardLogger())
	r := newTestRequest(t, "/")

	if user := sa.CurrentUser(r); user != nil {
		t.Fatalf("Expected no user before login, got %+v", user)
	}

	id, err := users.Create("Alice", "alice@example.com", time.Now().UTC())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sa.LoginUserID(r.Session(), id)

	user := sa.CurrentUser(r)
	if user == nil {
		t.Fatal("Expected a user after login")
	}
	if user.Name != "Alice" || user.Email != "alice@example.com" {
		t.Errorf("Unexpected identity: %+v", user)
	}

	sa.Logout(r)
	if user := sa.CurrentUser(r); user != nil {
		t.Errorf("Expected no user after logout, got %+v", user)
	}
}

func TestSessionAuthenticatorClearsStaleID(t *testing.T) {
	users := newTestUserStore(t)
	sa := NewSessionAuthenticator(users, discardLogger())
	r := newTestRequest(t, "/")

	// An id that never existed resolves to no user and is dropped.
	sa.LoginUserID(r.Session(), 9999)
	if user := sa.CurrentUser(r); user != nil {
		t.Errorf("Expected no user for a stale id, got %+v", user)
	}
	if _, ok := r.Session().Get(sessionUserIDKey); ok {
		t.Error("Expected the stale id to be cleared from the session")
	}

	// Same for a value that is not an id at all.
	r.Session().Set(sessionUserIDKey, "not-a-number")
	if user := sa.CurrentUser(r); user != nil {
		t.Errorf("Expected no user for a garbage id, got %+v", user)
	}
	if _, ok := r.Session().Get(sessionUserIDKey); ok {
		t.Error("Expected the garbage id to be cleared from the session")
	}
}

func TestPreAuthenticatedAuthenticator(t *testing.T) {
	identity := &models.Identity{ID: "ops", Name: "Operator"}
	pa := NewPreAuthenticatedAuthenticator(identity)
	r := newTestRequest(t, "/")

	if user := pa.CurrentUser(r); user == nil || user.ID != "ops" {
		t.Errorf("Expected the fixed identity, got %+v", user)
	}
}

// fakeProvider is a canned IdentityProvider for exercising the OAuth flow.
type fakeProvider struct {
	identity *models.Identity
	fail     bool
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (p *fakeProvider) Exchange(code string) (*models.Identity, error) {
	if p.fail {
		return nil, errors.New("exchange refused")
	}
	return p.identity, nil
}

func TestOAuthFlow(t *testing.T) {
	provider := &fakeProvider{identity: &models.Identity{ID: "g-1", Name: "Alice", Email: "alice@example.com"}}
	oa := NewOAuthAuthenticator(provider, discardLogger())

	store := NewSessionStore(time.Hour, 24*time.Hour)
	sess := store.Session("visitor")

	start := NewRequest(httptest.NewRequest("GET", "/auth/redirect", nil), sess)
	url, err := oa.InitiateLogin(start)
	if err != nil {
		t.Fatalf("InitiateLogin failed: %v", err)
	}
	state, ok := sess.Get(oauthStateKey)
	if !ok || state == "" {
		t.Fatal("Expected a state token in the session")
	}
	if url != provider.AuthCodeURL(state) {
		t.Errorf("Unexpected authorization url %q", url)
	}

	// A mismatched state is rejected and the stored state is discarded.
	bad := NewRequest(httptest.NewRequest("GET", "/auth/callback?state=forged&code=abc", nil), sess)
	if user := oa.HandleCallback(bad); user != nil {
		t.Errorf("Expected a forged state to be rejected, got %+v", user)
	}

	// Restart and complete the flow with the matching state.
	if _, err := oa.InitiateLogin(start); err != nil {
		t.Fatalf("InitiateLogin failed: %v", err)
	}
	state, _ = sess.Get(oauthStateKey)
	good := NewRequest(httptest.NewRequest("GET", "/auth/callback?state="+state+"&code=abc", nil), sess)
	user := oa.HandleCallback(good)
	if user == nil || user.ID != "g-1" {
		t.Fatalf("Expected the exchanged identity, got %+v", user)
	}

	// The identity is cached in the session for later requests.
	later := NewRequest(httptest.NewRequest("GET", "/", nil), sess)
	if user := oa.CurrentUser(later); user == nil || user.Email != "alice@example.com" {
		t.Errorf("Expected the cached identity, got %+v", user)
	}

	oa.Logout(later)
	if user := oa.CurrentUser(later); user != nil {
		t.Errorf("Expected no user after logout, got %+v", user)
	}
}

func TestOAuthExchangeFailure(t *testing.T) {
	provider := &fakeProvider{fail: true}
	oa := NewOAuthAuthenticator(provider, discardLogger())

	store := NewSessionStore(time.Hour, 24*time.Hour)
	sess := store.Session("visitor")

	start := NewRequest(httptest.NewRequest("GET", "/auth/redirect", nil), sess)
	if _, err := oa.InitiateLogin(start); err != nil {
		t.Fatalf("InitiateLogin failed: %v", err)
	}
	state, _ := sess.Get(oauthStateKey)

	cb := NewRequest(httptest.NewRequest("GET", "/auth/callback?state="+state+"&code=abc", nil), sess)
	if user := oa.HandleCallback(cb); user != nil {
		t.Errorf("Expected no user when the exchange fails, got %+v", user)
	}
}

func TestHybridAuthenticatorFallthrough(t *testing.T) {
	users := newTestUserStore(t)
	sa := NewSessionAuthenticator(users, discardLogger())
	provider := &fakeProvider{identity: &models.Identity{ID: "g-2", Name: "Remote"}}
	oa := NewOAuthAuthenticator(provider, discardLogger())
	hybrid := NewHybridAuthenticator(sa, oa)

	store := NewSessionStore(time.Hour, 24*time.Hour)
	sess := store.Session("visitor")
	r := NewRequest(httptest.NewRequest("GET", "/", nil), sess)

	if user := hybrid.CurrentUser(r); user != nil {
		t.Fatalf("Expected no user, got %+v", user)
	}
	if !hybrid.SupportsLoginRedirect() || !hybrid.SupportsPasswordLogin() {
		t.Error("Expected the hybrid to support both login flows")
	}

	// With only the OAuth identity cached, the secondary answers.
	sess.Set(oauthIDKey, "g-2")
	sess.Set(oauthNameKey, "Remote")
	if user := hybrid.CurrentUser(r); user == nil || user.ID != "g-2" {
		t.Fatalf("Expected the secondary identity, got %+v", user)
	}

	// A session login takes precedence over the cached OAuth identity.
	id, err := users.Create("Local", "local@example.com", time.Now().UTC())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sa.LoginUserID(sess, id)
	if user := hybrid.CurrentUser(r); user == nil || user.Name != "Local" {
		t.Fatalf("Expected the session identity to win, got %+v", user)
	}

	// Logout clears both.
	hybrid.Logout(r)
	if user := hybrid.CurrentUser(r); user != nil {
		t.Errorf("Expected no user after logout, got %+v", user)
	}

	data := hybrid.LoginViewData()
	if _, ok := data["password"]; !ok {
		t.Error("Expected password login data")
	}
	if _, ok := data["redirect"]; !ok {
		t.Error("Expected redirect login data")
	}
}
