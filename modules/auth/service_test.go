package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cyphervault/modules/auth"
	"github.com/dmitrymomot/cyphervault/pkg/totp"
)

func testConfig() auth.Config {
	return auth.Config{
		JWTSecret:         "test-signing-secret-at-least-32-bytes",
		Issuer:            "cyphervault",
		SessionTTL:        time.Hour,
		EmailConfirmTTL:   time.Hour,
		PasswordResetTTL:  time.Hour,
		AppBaseURL:        "http://localhost:8080",
		SessionCookieName: "access_token",
		TOTPIssuer:        "CypherVault",
	}
}

func newTestService(t *testing.T) (*auth.Service, *memUserStore, *recordingMailer) {
	t.Helper()

	cfg := testConfig()
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.Issuer)
	require.NoError(t, err)

	store := newMemUserStore()
	mailer := &recordingMailer{}
	svc, err := auth.NewService(cfg, store, tokens, mailer)
	require.NoError(t, err)
	return svc, store, mailer
}

func registerConfirmed(t *testing.T, svc *auth.Service, store *memUserStore, email, pass string) *auth.User {
	t.Helper()

	ctx := context.Background()
	user, err := svc.Register(ctx, email, pass)
	require.NoError(t, err)
	require.NoError(t, store.SetEmailConfirmed(ctx, user.ID))
	user.IsEmailConfirmed = true
	return user
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates unconfirmed account", func(t *testing.T) {
		t.Parallel()

		svc, _, mailer := newTestService(t)
		user, err := svc.Register(ctx, "A@X.com ", "Secret1!pass")
		require.NoError(t, err)

		assert.Equal(t, "a@x.com", user.Email)
		assert.False(t, user.IsEmailConfirmed)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "Secret1!pass", user.PasswordHash)

		// Confirmation email delivery is asynchronous.
		assert.Eventually(t, func() bool { return mailer.count() == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.Register(ctx, "a@x.com", "Secret1!pass")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "a@x.com", "AnotherPass1!")
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("rejects malformed email and short password", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.Register(ctx, "not-an-email", "Secret1!pass")
		assert.ErrorIs(t, err, auth.ErrInvalidEmail)

		_, err = svc.Register(ctx, "a@x.com", "short")
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})
}

func TestConfirmEmailAndLoginFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestService(t)

	// register -> confirm via issued token -> login -> session token
	user, err := svc.Register(ctx, "a@x.com", "Secret1!pass")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@x.com", "Secret1!pass", "")
	assert.ErrorIs(t, err, auth.ErrEmailNotConfirmed)

	tokens, err := auth.NewTokenService([]byte(testConfig().JWTSecret), testConfig().Issuer)
	require.NoError(t, err)
	confirmToken, err := tokens.Issue(user.ID, auth.PurposeEmailConfirm, time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmEmail(ctx, confirmToken))
	// Idempotent on repeat.
	require.NoError(t, svc.ConfirmEmail(ctx, confirmToken))

	session, loggedIn, err := svc.Login(ctx, "a@x.com", "Secret1!pass", "")
	require.NoError(t, err)
	assert.NotEmpty(t, session)
	assert.Equal(t, user.ID, loggedIn.ID)

	resolved, err := svc.ResolveCurrentUser(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("same error for unknown email and wrong password", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

		_, _, errUnknown := svc.Login(ctx, "nobody@x.com", "Secret1!pass", "")
		_, _, errWrong := svc.Login(ctx, "a@x.com", "wrong-password", "")

		assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, auth.ErrInvalidCredentials)
	})

	t.Run("session token rejected as reset token", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

		session, _, err := svc.Login(ctx, "a@x.com", "Secret1!pass", "")
		require.NoError(t, err)

		err = svc.ResetPassword(ctx, session, "NewSecret1!pass")
		assert.ErrorIs(t, err, auth.ErrPurposeMismatch)
	})
}

func TestTwoFactorFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newTestService(t)
	user := registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

	setup, err := svc.SetupTwoFactor(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	assert.Contains(t, setup.QRCode, "data:image/png;base64,")

	code, err := totp.Code(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.VerifyTwoFactor(ctx, user.ID, code))

	t.Run("login requires code once enrolled", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "a@x.com", "Secret1!pass", "")
		assert.ErrorIs(t, err, auth.ErrTwoFactorRequired)

		_, _, err = svc.Login(ctx, "a@x.com", "Secret1!pass", "000000")
		assert.ErrorIs(t, err, auth.ErrTwoFactorInvalid)

		code, err := totp.Code(setup.Secret, time.Now())
		require.NoError(t, err)
		session, _, err := svc.Login(ctx, "a@x.com", "Secret1!pass", code)
		require.NoError(t, err)
		assert.NotEmpty(t, session)
	})

	t.Run("disable requires current code and clears secret", func(t *testing.T) {
		err := svc.DisableTwoFactor(ctx, user.ID, "000000")
		assert.ErrorIs(t, err, auth.ErrTwoFactorInvalid)

		code, err := totp.Code(setup.Secret, time.Now())
		require.NoError(t, err)
		require.NoError(t, svc.DisableTwoFactor(ctx, user.ID, code))

		err = svc.VerifyTwoFactor(ctx, user.ID, code)
		assert.ErrorIs(t, err, auth.ErrTwoFactorNotEnabled)

		_, _, err = svc.Login(ctx, "a@x.com", "Secret1!pass", "")
		assert.NoError(t, err)
	})
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("identical outcome for known and unknown email", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

		assert.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
		assert.NoError(t, svc.RequestPasswordReset(ctx, "nobody@x.com"))
	})

	t.Run("reset token replaces password", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		user := registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

		tokens, err := auth.NewTokenService([]byte(testConfig().JWTSecret), testConfig().Issuer)
		require.NoError(t, err)
		resetToken, err := tokens.Issue(user.ID, auth.PurposePasswordReset, time.Hour)
		require.NoError(t, err)

		require.NoError(t, svc.ResetPassword(ctx, resetToken, "NewSecret1!pass"))

		_, _, err = svc.Login(ctx, "a@x.com", "Secret1!pass", "")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, _, err = svc.Login(ctx, "a@x.com", "NewSecret1!pass", "")
		assert.NoError(t, err)
	})

	t.Run("expired reset token is rejected", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		user := registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

		tokens, err := auth.NewTokenService([]byte(testConfig().JWTSecret), testConfig().Issuer)
		require.NoError(t, err)
		resetToken, err := tokens.Issue(user.ID, auth.PurposePasswordReset, -time.Second)
		require.NoError(t, err)

		err = svc.ResetPassword(ctx, resetToken, "NewSecret1!pass")
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newTestService(t)
	user := registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

	err := svc.ChangePassword(ctx, user.ID, "wrong-password", "NewSecret1!pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "Secret1!pass", "NewSecret1!pass"))
	_, _, err = svc.Login(ctx, "a@x.com", "NewSecret1!pass", "")
	assert.NoError(t, err)
}

func TestResolveCurrentUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newTestService(t)
	user := registerConfirmed(t, svc, store, "a@x.com", "Secret1!pass")

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.ResolveCurrentUser(ctx, "")
		assert.ErrorIs(t, err, auth.ErrNoToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ResolveCurrentUser(ctx, "not-a-token")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("inactive user", func(t *testing.T) {
		session, _, err := svc.Login(ctx, "a@x.com", "Secret1!pass", "")
		require.NoError(t, err)

		store.mu.Lock()
		store.users[user.ID].IsActive = false
		store.mu.Unlock()

		_, err = svc.ResolveCurrentUser(ctx, session)
		assert.ErrorIs(t, err, auth.ErrUserInactive)
	})
}
