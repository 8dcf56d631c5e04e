package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/cyphervault/pkg/pg"
)

// PostgresUserStore implements UserStore on a pgx connection pool.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, email, password_hash, COALESCE(totp_secret, ''), is_active, is_email_confirmed, created_at, updated_at`

func (s *PostgresUserStore) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, email, password_hash, is_active, is_email_confirmed, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.IsActive, user.IsEmailConfirmed, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, id))
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, email))
}

func (s *PostgresUserStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return s.execAffectingOne(ctx, query, id, hash)
}

func (s *PostgresUserStore) UpdateTotpSecret(ctx context.Context, id uuid.UUID, secret string) error {
	query := `UPDATE users SET totp_secret = NULLIF($2, ''), updated_at = now() WHERE id = $1`
	return s.execAffectingOne(ctx, query, id, secret)
}

func (s *PostgresUserStore) SetEmailConfirmed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET is_email_confirmed = true, updated_at = now() WHERE id = $1`
	return s.execAffectingOne(ctx, query, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.TotpSecret,
		&u.IsActive, &u.IsEmailConfirmed, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) execAffectingOne(ctx context.Context, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
