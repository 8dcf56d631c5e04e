package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores blobs under a base directory on the local filesystem.
// All operations are confined to the base directory to prevent path
// traversal.
type Local struct {
	baseDir string
}

// NewLocal resolves and creates the base directory.
func NewLocal(baseDir string) (*Local, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &Local{baseDir: abs}, nil
}

// Healthcheck verifies the base directory is still present and accessible.
func (l *Local) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(l.baseDir)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnavailable, l.baseDir)
	}
	return nil
}

func (l *Local) Write(ctx context.Context, path string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	abs, err := l.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, errors.Join(ErrWriteFailed, err)
	}

	dst, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.Join(ErrWriteFailed, err)
	}

	written, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(abs) // do not leave partial blobs behind
		return 0, errors.Join(ErrWriteFailed, err)
	}
	return written, nil
}

func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, errors.Join(ErrReadFailed, err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, path string) bool {
	abs, err := l.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// resolve confines the path to the base directory.
func (l *Local) resolve(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(l.baseDir, filepath.Clean(path)))
	if err != nil {
		return "", errors.Join(ErrInvalidPath, err)
	}
	if abs != l.baseDir && !strings.HasPrefix(abs, l.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return abs, nil
}
