package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cyphervault/pkg/async"
	"github.com/dmitrymomot/cyphervault/pkg/email"
	"github.com/dmitrymomot/cyphervault/pkg/logger"
	"github.com/dmitrymomot/cyphervault/pkg/password"
	"github.com/dmitrymomot/cyphervault/pkg/qrcode"
	"github.com/dmitrymomot/cyphervault/pkg/totp"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// Service orchestrates credential verification, the TOTP second factor, and
// token issuance into the account flows.
type Service struct {
	cfg    Config
	store  UserStore
	tokens *TokenService
	mailer email.EmailSender
	pool   *async.Pool
	log    *slog.Logger
}

type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithWorkerPool sets the pool used to offload bcrypt hashing and
// verification from the request path.
func WithWorkerPool(pool *async.Pool) Option {
	return func(s *Service) {
		if pool != nil {
			s.pool = pool
		}
	}
}

// NewService creates the auth service.
func NewService(cfg Config, store UserStore, tokens *TokenService, mailer email.EmailSender, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: nil user store")
	}
	if tokens == nil {
		return nil, errors.New("auth: nil token service")
	}
	if mailer == nil {
		return nil, errors.New("auth: nil mailer")
	}

	s := &Service{
		cfg:    cfg,
		store:  store,
		tokens: tokens,
		mailer: mailer,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		pool, err := async.NewPool(runtime.NumCPU())
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}
	return s, nil
}

// Register creates an account with an unconfirmed email and sends a
// confirmation link. The confirmation token is issued even though delivery
// is fire-and-forget; a failed send only shows up in logs.
func (s *Service) Register(ctx context.Context, emailAddr, plainPassword string) (*User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if !emailRegex.MatchString(emailAddr) {
		return nil, ErrInvalidEmail
	}
	if len(plainPassword) < minPasswordLength {
		return nil, fmt.Errorf("%w: minimum %d characters", ErrWeakPassword, minPasswordLength)
	}

	if _, err := s.store.GetUserByEmail(ctx, emailAddr); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.hashPassword(ctx, plainPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	confirmToken, err := s.tokens.Issue(user.ID, PurposeEmailConfirm, s.cfg.EmailConfirmTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue confirmation token: %w", err)
	}
	s.sendAsync(user, "Confirm your email", confirmationEmailBody(s.cfg.AppBaseURL, confirmToken), "email-confirm")

	return user, nil
}

// ConfirmEmail marks the token's subject as confirmed. Confirming an already
// confirmed account is a no-op.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Verify(token, PurposeEmailConfirm)
	if err != nil {
		return err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsEmailConfirmed {
		return nil
	}
	return s.store.SetEmailConfirmed(ctx, user.ID)
}

// Login verifies the password and, when a TOTP secret is enrolled, the
// one-time code, then issues a session token. Unknown email and wrong
// password produce the same error to prevent account enumeration.
func (s *Service) Login(ctx context.Context, emailAddr, plainPassword, code string) (string, *User, error) {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.store.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.verifyPassword(ctx, plainPassword, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, ErrUserInactive
	}
	if !user.IsEmailConfirmed {
		return "", nil, ErrEmailNotConfirmed
	}

	if user.TwoFactorEnabled() {
		if code == "" {
			return "", nil, ErrTwoFactorRequired
		}
		valid, err := totp.Validate(user.TotpSecret, code)
		if err != nil || !valid {
			return "", nil, ErrTwoFactorInvalid
		}
	}

	token, err := s.tokens.Issue(user.ID, PurposeSession, s.cfg.SessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return token, user, nil
}

// SetupTwoFactor generates a fresh TOTP secret for the user, overwriting any
// prior secret immediately, and returns the enrollment material.
func (s *Service) SetupTwoFactor(ctx context.Context, userID uuid.UUID) (*TwoFactorSetup, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}
	if err := s.store.UpdateTotpSecret(ctx, user.ID, secret); err != nil {
		return nil, fmt.Errorf("failed to store totp secret: %w", err)
	}

	uri, err := totp.ProvisioningURI(secret, user.Email, s.cfg.TOTPIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to build provisioning uri: %w", err)
	}
	qr, err := qrcode.GenerateBase64Image(uri, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	return &TwoFactorSetup{Secret: secret, ProvisioningURI: uri, QRCode: qr}, nil
}

// VerifyTwoFactor checks a code against the user's enrolled secret.
func (s *Service) VerifyTwoFactor(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled() {
		return ErrTwoFactorNotEnabled
	}
	valid, err := totp.Validate(user.TotpSecret, code)
	if err != nil || !valid {
		return ErrTwoFactorInvalid
	}
	return nil
}

// DisableTwoFactor clears the user's TOTP secret after verifying a
// currently-correct code.
func (s *Service) DisableTwoFactor(ctx context.Context, userID uuid.UUID, code string) error {
	if err := s.VerifyTwoFactor(ctx, userID, code); err != nil {
		return err
	}
	return s.store.UpdateTotpSecret(ctx, userID, "")
}

// RequestPasswordReset issues a reset token and emails it when the address
// is registered. The caller always observes success so the endpoint cannot
// be used to probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.store.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	resetToken, err := s.tokens.Issue(user.ID, PurposePasswordReset, s.cfg.PasswordResetTTL)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	s.sendAsync(user, "Reset your password", resetEmailBody(s.cfg.AppBaseURL, resetToken), "password-reset")
	return nil
}

// ResetPassword replaces the password hash for the token's subject.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.Verify(token, PurposePasswordReset)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrWeakPassword, minPasswordLength)
	}

	hash, err := s.hashPassword(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.verifyPassword(ctx, oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrWeakPassword, minPasswordLength)
	}

	hash, err := s.hashPassword(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.UpdatePasswordHash(ctx, user.ID, hash)
}

// ResolveCurrentUser returns the active user behind a session token.
// Authentication failures always surface; there is no guest fallback.
func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	userID, err := s.tokens.Verify(token, PurposeSession)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// hashPassword runs bcrypt on the worker pool so it doesn't stall the
// request-handling goroutines.
func (s *Service) hashPassword(ctx context.Context, plain string) (string, error) {
	return async.Submit(ctx, s.pool, plain, func(_ context.Context, p string) (string, error) {
		return password.Hash(p)
	}).Await()
}

func (s *Service) verifyPassword(ctx context.Context, plain, hash string) (bool, error) {
	return async.Submit(ctx, s.pool, plain, func(_ context.Context, p string) (bool, error) {
		return password.Verify(p, hash), nil
	}).Await()
}

// sendAsync delivers email off the request path. Delivery failures are
// logged, never surfaced.
func (s *Service) sendAsync(user *User, subject, body, tag string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("email delivery panicked",
					logger.UserID(user.ID.String()),
					slog.Any("panic", r),
					logger.Component("auth"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.mailer.SendEmail(ctx, email.SendEmailParams{
			SendTo:   user.Email,
			Subject:  subject,
			BodyHTML: body,
			Tag:      tag,
		})
		if err != nil {
			s.log.Error("failed to send email",
				logger.UserID(user.ID.String()),
				slog.String("tag", tag),
				logger.Error(err),
				logger.Component("auth"),
			)
		}
	}()
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func confirmationEmailBody(baseURL, token string) string {
	link := fmt.Sprintf("%s/auth/confirm-email?token=%s", strings.TrimRight(baseURL, "/"), token)
	return fmt.Sprintf(`<p>Welcome to CypherVault.</p><p><a href=%q>Confirm your email</a> to activate your account. The link expires in one hour.</p>`, link)
}

func resetEmailBody(baseURL, token string) string {
	link := fmt.Sprintf("%s/auth/reset-password?token=%s", strings.TrimRight(baseURL, "/"), token)
	return fmt.Sprintf(`<p>A password reset was requested for your account.</p><p><a href=%q>Choose a new password</a>. The link expires in one hour. If you did not request this, ignore this message.</p>`, link)
}
