package totp

import "errors"

var (
	ErrSecretGenerationFailed = errors.New("totp: failed to generate secret")
	ErrInvalidSecret          = errors.New("totp: secret is not valid base32")
	ErrInvalidCode            = errors.New("totp: code has invalid format")
	ErrMissingAccountName     = errors.New("totp: missing account name")
	ErrMissingIssuer          = errors.New("totp: missing issuer")
)
