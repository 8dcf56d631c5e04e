package files

import (
	"context"

	"github.com/google/uuid"
)

// FileStore defines the metadata repository. All queries are owner-scoped;
// a file owned by someone else is indistinguishable from a missing one and
// yields ErrFileNotFound.
type FileStore interface {
	CreateFile(ctx context.Context, file *File) error
	GetUserFile(ctx context.Context, ownerID, fileID uuid.UUID) (*File, error)
	ListUserFiles(ctx context.Context, ownerID uuid.UUID) ([]File, error)
	DeleteFile(ctx context.Context, ownerID, fileID uuid.UUID) error
}
