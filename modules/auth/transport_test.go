package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/cyphervault/modules/auth"
)

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	const cookieName = "access_token"

	t.Run("cookie wins over header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "cookie-token", auth.TokenFromRequest(r, cookieName))
	})

	t.Run("bearer header when no cookie", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "header-token", auth.TokenFromRequest(r, cookieName))
	})

	t.Run("empty cookie falls through to header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: cookieName, Value: ""})
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "header-token", auth.TokenFromRequest(r, cookieName))
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		assert.Empty(t, auth.TokenFromRequest(r, cookieName))
	})

	t.Run("no credential", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, auth.TokenFromRequest(r, cookieName))
	})
}

func TestSessionCookie(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	c := auth.SessionCookie(cfg, "tok", 3600)
	assert.Equal(t, cfg.SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)

	cleared := auth.SessionCookie(cfg, "", -1)
	assert.Equal(t, -1, cleared.MaxAge)
}
