package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cyphervault/modules/auth"
)

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService([]byte("test-signing-secret-at-least-32-bytes"), "cyphervault")
	require.NoError(t, err)
	return svc
}

func TestTokenServicePurposes(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)
	userID := uuid.New()

	purposes := []string{auth.PurposeSession, auth.PurposeEmailConfirm, auth.PurposePasswordReset}
	for _, issued := range purposes {
		token, err := svc.Issue(userID, issued, time.Hour)
		require.NoError(t, err)

		for _, expected := range purposes {
			got, err := svc.Verify(token, expected)
			if issued == expected {
				require.NoError(t, err)
				assert.Equal(t, userID, got)
			} else {
				assert.ErrorIs(t, err, auth.ErrPurposeMismatch, "issued %q verified as %q", issued, expected)
			}
		}
	}
}

func TestTokenServiceExpiry(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)
	userID := uuid.New()

	t.Run("valid before expiry", func(t *testing.T) {
		t.Parallel()

		token, err := svc.Issue(userID, auth.PurposeSession, time.Hour)
		require.NoError(t, err)

		got, err := svc.Verify(token, auth.PurposeSession)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("expired after expiry instant", func(t *testing.T) {
		t.Parallel()

		token, err := svc.Issue(userID, auth.PurposeSession, -time.Second)
		require.NoError(t, err)

		_, err = svc.Verify(token, auth.PurposeSession)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})
}

func TestTokenServiceIssuer(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	svcA, err := auth.NewTokenService([]byte("shared-signing-secret-32-bytes!!"), "issuer-a")
	require.NoError(t, err)
	svcB, err := auth.NewTokenService([]byte("shared-signing-secret-32-bytes!!"), "issuer-b")
	require.NoError(t, err)

	token, err := svcA.Issue(userID, auth.PurposeSession, time.Hour)
	require.NoError(t, err)

	// Same key, different configured issuer: session tokens are rejected.
	_, err = svcB.Verify(token, auth.PurposeSession)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	// Non-session purposes do not carry an issuer and cross freely.
	reset, err := svcA.Issue(userID, auth.PurposePasswordReset, time.Hour)
	require.NoError(t, err)
	_, err = svcB.Verify(reset, auth.PurposePasswordReset)
	assert.NoError(t, err)
}

func TestTokenServiceTampering(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)
	token, err := svc.Issue(uuid.New(), auth.PurposeSession, time.Hour)
	require.NoError(t, err)

	_, err = svc.Verify(token+"x", auth.PurposeSession)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	other, err := auth.NewTokenService([]byte("a-completely-different-secret-key!!"), "cyphervault")
	require.NoError(t, err)
	_, err = other.Verify(token, auth.PurposeSession)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
