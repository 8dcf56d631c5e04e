package jwt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cyphervault/pkg/jwt"
)

func newService(t *testing.T) *jwt.Service {
	t.Helper()
	svc, err := jwt.New([]byte("test-signing-key-of-adequate-len"))
	require.NoError(t, err)
	return svc
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	in := jwt.StandardClaims{
		Subject:   "user-42",
		Issuer:    "cyphervault",
		Purpose:   "session",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		IssuedAt:  time.Now().Unix(),
	}

	token, err := svc.Generate(in)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	var out jwt.StandardClaims
	require.NoError(t, svc.Parse(token, &out))
	assert.Equal(t, in, out)
}

func TestParseExpired(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, err := svc.Generate(jwt.StandardClaims{
		Subject:   "user-42",
		ExpiresAt: time.Now().Add(-time.Second).Unix(),
	})
	require.NoError(t, err)

	var out jwt.StandardClaims
	assert.ErrorIs(t, svc.Parse(token, &out), jwt.ErrExpiredToken)
}

func TestParseNotYetExpired(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, err := svc.Generate(jwt.StandardClaims{
		Subject:   "user-42",
		ExpiresAt: time.Now().Add(2 * time.Second).Unix(),
	})
	require.NoError(t, err)

	var out jwt.StandardClaims
	assert.NoError(t, svc.Parse(token, &out))
}

func TestParseTampered(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, err := svc.Generate(jwt.StandardClaims{Subject: "user-42"})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	var out jwt.StandardClaims
	assert.ErrorIs(t, svc.Parse(tampered, &out), jwt.ErrInvalidSignature)
}

func TestParseWrongKey(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	other, err := jwt.New([]byte("another-signing-key-entirely!!!!"))
	require.NoError(t, err)

	token, err := svc.Generate(jwt.StandardClaims{Subject: "user-42"})
	require.NoError(t, err)

	var out jwt.StandardClaims
	assert.ErrorIs(t, other.Parse(token, &out), jwt.ErrInvalidSignature)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	var out jwt.StandardClaims
	assert.ErrorIs(t, svc.Parse("not-a-token", &out), jwt.ErrInvalidToken)
	assert.ErrorIs(t, svc.Parse("a.b", &out), jwt.ErrInvalidToken)
}
