package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cyphervault/pkg/jwt"
)

// Token purposes. A token is only accepted by the operation matching its
// purpose tag.
const (
	PurposeSession       = "session"
	PurposeEmailConfirm  = "email_confirm"
	PurposePasswordReset = "password_reset"
)

// TokenService issues and verifies purpose-scoped signed tokens.
type TokenService struct {
	signer *jwt.Service
	issuer string
}

// NewTokenService creates a token service with the given signing secret and
// issuer label. Session tokens carry the issuer and verification requires it
// to match.
func NewTokenService(secret []byte, issuer string) (*TokenService, error) {
	signer, err := jwt.New(secret)
	if err != nil {
		return nil, err
	}
	return &TokenService{signer: signer, issuer: issuer}, nil
}

// Issue signs a token for the subject with the given purpose and TTL.
func (t *TokenService) Issue(subject uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   subject.String(),
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl).Unix(),
		IssuedAt:  now.Unix(),
	}
	if purpose == PurposeSession {
		claims.Issuer = t.issuer
	}
	return t.signer.Generate(claims)
}

// Verify parses the token, checks signature and expiry, and enforces the
// expected purpose. Session tokens must additionally carry the configured
// issuer. The subject is returned as the user ID.
func (t *TokenService) Verify(token, expectedPurpose string) (uuid.UUID, error) {
	var claims jwt.StandardClaims
	if err := t.signer.Parse(token, &claims); err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenInvalid
	}

	if claims.Purpose != expectedPurpose {
		return uuid.Nil, ErrPurposeMismatch
	}
	if expectedPurpose == PurposeSession && claims.Issuer != t.issuer {
		return uuid.Nil, ErrTokenInvalid
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return subject, nil
}
