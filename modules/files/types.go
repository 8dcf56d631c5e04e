package files

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// File is the metadata record for one encrypted object. KeyReference is the
// custodian path of the content key, never the key itself. Size is the
// plaintext byte count, not the ciphertext stored in the blob.
type File struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Filename     string
	KeyReference string
	StoragePath  string
	Size         int64
	CreatedAt    time.Time
}

// UploadItem is one file in an upload batch. Size is the declared plaintext
// size used for limit checks before any encryption work starts.
type UploadItem struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadResult reports the outcome for one item of a batch. Err is nil on
// success; per-item failures never fail the batch call.
type UploadResult struct {
	Filename string
	FileID   uuid.UUID
	Size     int64
	Err      error
}
