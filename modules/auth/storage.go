package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserStore defines the storage operations required by the auth service.
// Implementations return ErrUserNotFound for missing records and
// ErrEmailTaken for unique email violations.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	// UpdateTotpSecret overwrites the TOTP secret; an empty secret disables
	// the second factor.
	UpdateTotpSecret(ctx context.Context, id uuid.UUID, secret string) error
	SetEmailConfirmed(ctx context.Context, id uuid.UUID) error
}
