package blob

import (
	"context"
	"fmt"
	"io"
)

// Storage is the blob-storage collaborator consumed by the file vault.
type Storage interface {
	// Write streams the content to the given path, creating or replacing it.
	Write(ctx context.Context, path string, r io.Reader) (int64, error)
	// Read opens the blob at path for streaming. The caller must close it.
	Read(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the blob at path. Missing blobs are tolerated.
	Delete(ctx context.Context, path string) error
	// Exists reports whether a blob is present at path.
	Exists(ctx context.Context, path string) bool
}

type Config struct {
	Driver string `env:"BLOB_DRIVER" envDefault:"local"` // Driver selects the storage backend: local or s3.

	LocalDir string `env:"BLOB_LOCAL_DIR" envDefault:"./data/blobs"` // LocalDir is the base directory for the local driver.

	S3Bucket         string `env:"BLOB_S3_BUCKET"`           // S3Bucket is the bucket holding ciphertext blobs.
	S3Region         string `env:"BLOB_S3_REGION"`           // S3Region is the AWS region.
	S3AccessKeyID    string `env:"BLOB_S3_ACCESS_KEY_ID"`    // S3AccessKeyID is the static credential ID.
	S3SecretKey      string `env:"BLOB_S3_SECRET_KEY"`       // S3SecretKey is the static credential secret.
	S3Endpoint       string `env:"BLOB_S3_ENDPOINT"`         // S3Endpoint overrides the endpoint for S3-compatible services.
	S3ForcePathStyle bool   `env:"BLOB_S3_FORCE_PATH_STYLE"` // S3ForcePathStyle enables path-style addressing (MinIO).
}

// Healthcheck returns a probe for the storage backend, suitable for
// readiness handlers. Drivers without a probe always report healthy.
func Healthcheck(s Storage) func(context.Context) error {
	return func(ctx context.Context) error {
		if hc, ok := s.(interface{ Healthcheck(context.Context) error }); ok {
			return hc.Healthcheck(ctx)
		}
		return nil
	}
}

// New builds the Storage selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
