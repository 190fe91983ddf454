// sbbs/auth/session.go
package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "sbbs_session"

// Session is per-visitor key/value state. Authenticators receive it
// explicitly instead of reaching for ambient request globals.
type Session interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// SessionStore keeps sessions in memory, keyed by a cookie-carried uuid.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
	lastSeen map[string]time.Time

	prune  time.Duration
	expire time.Duration
}

// NewSessionStore creates a store and starts its cleanup loop.
func NewSessionStore(prune, expire time.Duration) *SessionStore {
	ss := &SessionStore{
		sessions: make(map[string]map[string]string),
		lastSeen: make(map[string]time.Time),
		prune:    prune,
		expire:   expire,
	}
	go ss.cleanup()
	return ss
}

// Load resolves the request's session, minting a new session cookie when
// none is present.
func (ss *SessionStore) Load(w http.ResponseWriter, r *http.Request) Session {
	var id string
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	} else {
		id = cookie.Value
	}
	return ss.Session(id)
}

// Session returns the session for a known id, creating it on first use.
func (ss *SessionStore) Session(id string) Session {
	ss.mu.Lock()
	if _, ok := ss.sessions[id]; !ok {
		ss.sessions[id] = make(map[string]string)
	}
	ss.lastSeen[id] = time.Now()
	ss.mu.Unlock()
	return &session{store: ss, id: id}
}

func (ss *SessionStore) cleanup() {
	for range time.Tick(ss.prune) {
		ss.mu.Lock()
		cutoff := time.Now().Add(-ss.expire)
		for id, seen := range ss.lastSeen {
			if seen.Before(cutoff) {
				delete(ss.sessions, id)
				delete(ss.lastSeen, id)
			}
		}
		ss.mu.Unlock()
	}
}

type session struct {
	store *SessionStore
	id    string
}

func (s *session) Get(key string) (string, bool) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	values, ok := s.store.sessions[s.id]
	if !ok {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (s *session) Set(key, value string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	values, ok := s.store.sessions[s.id]
	if !ok {
		values = make(map[string]string)
		s.store.sessions[s.id] = values
	}
	values[key] = value
	s.store.lastSeen[s.id] = time.Now()
}

func (s *session) Delete(key string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if values, ok := s.store.sessions[s.id]; ok {
		delete(values, key)
	}
}
