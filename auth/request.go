// sbbs/auth/request.go
package auth

import (
	"net/http"

	"sbbs/models"
)

// Request bundles the incoming HTTP request with its session and a slot for
// the resolved user, so authenticators never touch process-global state.
type Request struct {
	http    *http.Request
	session Session
	user    *models.Identity
}

func NewRequest(r *http.Request, session Session) *Request {
	return &Request{http: r, session: session}
}

func (r *Request) Method() string { return r.http.Method }

// Query returns a URL query parameter.
func (r *Request) Query(key string) string {
	return r.http.URL.Query().Get(key)
}

// Form returns a form body value (falling back to query parameters, as
// net/http's FormValue does).
func (r *Request) Form(key string) string {
	return r.http.FormValue(key)
}

func (r *Request) Session() Session { return r.session }

// User returns the identity resolved for this request, if any.
func (r *Request) User() *models.Identity { return r.user }

func (r *Request) SetUser(u *models.Identity) { r.user = u }

// HTTP exposes the underlying request for handlers that need it.
func (r *Request) HTTP() *http.Request { return r.http }
