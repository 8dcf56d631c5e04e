package files

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/cyphervault/pkg/pg"
)

// PostgresFileStore implements FileStore on a pgx connection pool.
type PostgresFileStore struct {
	db *pgxpool.Pool
}

func NewPostgresFileStore(db *pgxpool.Pool) *PostgresFileStore {
	return &PostgresFileStore{db: db}
}

func (s *PostgresFileStore) CreateFile(ctx context.Context, file *File) error {
	query := `INSERT INTO files (id, owner_id, filename, key_reference, storage_path, size, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Exec(ctx, query,
		file.ID, file.OwnerID, file.Filename, file.KeyReference, file.StoragePath, file.Size, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (s *PostgresFileStore) GetUserFile(ctx context.Context, ownerID, fileID uuid.UUID) (*File, error) {
	query := `SELECT id, owner_id, filename, key_reference, storage_path, size, created_at
	          FROM files WHERE id = $1 AND owner_id = $2`

	var f File
	err := s.db.QueryRow(ctx, query, fileID, ownerID).Scan(
		&f.ID, &f.OwnerID, &f.Filename, &f.KeyReference, &f.StoragePath, &f.Size, &f.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}
	return &f, nil
}

func (s *PostgresFileStore) ListUserFiles(ctx context.Context, ownerID uuid.UUID) ([]File, error) {
	query := `SELECT id, owner_id, filename, key_reference, storage_path, size, created_at
	          FROM files WHERE owner_id = $1 ORDER BY created_at DESC, id`

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Filename, &f.KeyReference, &f.StoragePath, &f.Size, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return out, nil
}

func (s *PostgresFileStore) DeleteFile(ctx context.Context, ownerID, fileID uuid.UUID) error {
	query := `DELETE FROM files WHERE id = $1 AND owner_id = $2`

	tag, err := s.db.Exec(ctx, query, fileID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}
