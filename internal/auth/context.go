package auth

import (
	"context"
	"net/http"
)

// CookieName is the session cookie.
const CookieName = "auth_session"

// Subject is the authenticated admin making a request.
type Subject struct {
	Email string `json:"email"`
}

type subjectKey struct{}

// WithSubject attaches an authenticated subject to ctx.
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFrom returns the subject attached to ctx, if any.
func SubjectFrom(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(Subject)
	return s, ok
}

// SessionCookie builds the session cookie. It has no Max-Age, so the
// browser drops it when it closes.
func SessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie expires the session cookie.
func ClearedSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SubjectFromRequest verifies the session cookie on r.
func (s *Signer) SubjectFromRequest(r *http.Request) (Subject, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Subject{}, false
	}
	email, err := s.VerifySessionToken(c.Value)
	if err != nil {
		return Subject{}, false
	}
	return Subject{Email: email}, true
}
