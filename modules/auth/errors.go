package auth

import "errors"

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet security requirements")
)

// Second-factor errors
var (
	ErrTwoFactorRequired   = errors.New("two-factor code required")
	ErrTwoFactorInvalid    = errors.New("invalid two-factor code")
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication is not enabled")
)

// Token errors
var (
	ErrNoToken         = errors.New("no credential token provided")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrPurposeMismatch = errors.New("token purpose mismatch")
)
