package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var userContextKey = contextKey{}

// TokenFromRequest extracts the session credential. The cookie is checked
// first; the Authorization Bearer header is a fallback for API clients.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// Middleware resolves the current user from the request credential and
// injects it into the request context. Requests without a valid session are
// rejected with 401.
func (s *Service) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, s.cfg.SessionCookieName)
			user, err := s.ResolveCurrentUser(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser returns the authenticated user placed in the context by
// Middleware.
func CurrentUser(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}

// SessionCookie builds the cookie carrying the session token. A negative
// maxAge clears it on logout.
func SessionCookie(cfg Config, token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
