package session

import (
	"net/http"
)

// cookieName matches the Flask deployments this service replaced, so
// existing browsers simply re-authenticate instead of carrying two cookies.
const cookieName = "session"

// Session is the per-request binding between the HTTP session and a user id.
//
// Services take a Session as an explicit parameter rather than reading
// ambient request state — tests pass a fake, handlers pass the cookie-backed
// implementation below.
type Session interface {
	// Bind associates the session with a user id. A permanent session
	// survives browser restarts for 30 days; a non-permanent one is a
	// browser-session cookie.
	Bind(userID int64, permanent bool) error
	// Clear invalidates the session.
	Clear()
	// Resolve returns the bound user id, or false if the session is
	// absent, expired, or tampered with.
	Resolve() (int64, bool)
}

// Manager creates cookie-backed sessions for HTTP requests.
type Manager struct {
	tokens *TokenService
	secure bool // set the Secure attribute (HTTPS deployments)
}

// NewManager creates a session Manager signing with the given secret.
// secure should be true whenever the service is reached over HTTPS.
func NewManager(secret string, secure bool) (*Manager, error) {
	tokens, err := NewTokenService(secret)
	if err != nil {
		return nil, err
	}
	return &Manager{tokens: tokens, secure: secure}, nil
}

// FromRequest returns the Session handle for one request/response pair.
// The handle is only valid for the lifetime of the request.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) Session {
	return &cookieSession{m: m, w: w, r: r}
}

// cookieSession implements Session over an HttpOnly signed cookie.
type cookieSession struct {
	m *Manager
	w http.ResponseWriter
	r *http.Request
}

func (c *cookieSession) Bind(userID int64, permanent bool) error {
	ttl := defaultTokenTTL
	maxAge := 0 // browser-session cookie
	if permanent {
		ttl = PermanentLifetime
		maxAge = int(PermanentLifetime.Seconds())
	}

	token, err := c.m.tokens.Generate(userID, ttl)
	if err != nil {
		return err
	}

	// HttpOnly: JavaScript cannot read the cookie (XSS protection).
	// SameSite=Lax: sent on top-level navigations, not cross-site POSTs.
	http.SetCookie(c.w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *cookieSession) Clear() {
	http.SetCookie(c.w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		Secure:   c.m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieSession) Resolve() (int64, bool) {
	cookie, err := c.r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	userID, err := c.m.tokens.Validate(cookie.Value)
	if err != nil {
		return 0, false
	}
	return userID, true
}
