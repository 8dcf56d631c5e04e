package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cyphervault/pkg/async"
	"github.com/dmitrymomot/cyphervault/pkg/blob"
	"github.com/dmitrymomot/cyphervault/pkg/envelope"
	"github.com/dmitrymomot/cyphervault/pkg/logger"
	"github.com/dmitrymomot/cyphervault/pkg/vault"
)

// Service orchestrates envelope encryption, key custody, blob storage, and
// the metadata repository into the file vault operations.
type Service struct {
	cfg       Config
	store     FileStore
	blobs     blob.Storage
	custodian vault.Custodian
	pool      *async.Pool
	log       *slog.Logger
}

type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithWorkerPool sets the pool bounding concurrent encryption work.
func WithWorkerPool(pool *async.Pool) Option {
	return func(s *Service) {
		if pool != nil {
			s.pool = pool
		}
	}
}

// NewService creates the file vault service.
func NewService(cfg Config, store FileStore, blobs blob.Storage, custodian vault.Custodian, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("files: nil file store")
	}
	if blobs == nil {
		return nil, errors.New("files: nil blob storage")
	}
	if custodian == nil {
		return nil, errors.New("files: nil key custodian")
	}

	s := &Service{
		cfg:       cfg,
		store:     store,
		blobs:     blobs,
		custodian: custodian,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		pool, err := async.NewPool(runtime.NumCPU())
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}
	return s, nil
}

// Upload encrypts and stores a batch of files. Limits are checked before any
// encryption work starts, so items failing validation cost nothing and do
// not affect the rest of the batch. The call itself fails only when the
// batch is oversized or every accepted item hit a storage/custody outage.
func (s *Service) Upload(ctx context.Context, ownerID uuid.UUID, items []UploadItem) ([]UploadResult, error) {
	if len(items) > s.cfg.MaxFilesPerUpload {
		return nil, fmt.Errorf("%w: maximum %d", ErrTooManyFiles, s.cfg.MaxFilesPerUpload)
	}

	results := make([]UploadResult, len(items))
	accepted := make([]int, 0, len(items))

	var total int64
	for i, item := range items {
		results[i] = UploadResult{Filename: item.Filename, Size: item.Size}
		switch {
		case strings.TrimSpace(item.Filename) == "":
			results[i].Err = ErrEmptyFilename
		case item.Size > s.cfg.MaxFileSize:
			results[i].Err = ErrFileTooLarge
		case total+item.Size > s.cfg.MaxTotalSize:
			results[i].Err = ErrTotalSizeExceeded
		default:
			total += item.Size
			accepted = append(accepted, i)
		}
	}

	// Encryption runs on the worker pool; items proceed independently so one
	// failure never corrupts already-committed neighbors. Accepted items run
	// to completion even when the caller disconnects mid-transfer, and a
	// rollback is never aborted by the cancellation that exposed it.
	workCtx := context.WithoutCancel(ctx)
	futures := make(map[int]*async.Future[*File], len(accepted))
	for _, i := range accepted {
		futures[i] = async.Submit(workCtx, s.pool, items[i], func(ctx context.Context, item UploadItem) (*File, error) {
			return s.storeItem(ctx, ownerID, item)
		})
	}

	outage := len(accepted) > 0
	for _, i := range accepted {
		file, err := futures[i].Await()
		if err != nil {
			results[i].Err = err
			if !errors.Is(err, vault.ErrUnavailable) && !errors.Is(err, blob.ErrUnavailable) {
				outage = false
			}
			continue
		}
		outage = false
		results[i].FileID = file.ID
	}

	if outage {
		return results, fmt.Errorf("upload failed for all items: %w", vault.ErrUnavailable)
	}
	return results, nil
}

// storeItem runs the per-item pipeline: key, ciphertext, custody, metadata.
// Metadata goes last; on its failure the blob is rolled back and the key is
// cleaned up best-effort, so no row ever references missing data.
func (s *Service) storeItem(ctx context.Context, ownerID uuid.UUID, item UploadItem) (*File, error) {
	key, err := envelope.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate content key: %w", err)
	}

	fileID := uuid.New()
	storagePath := fmt.Sprintf("%s/%s%s", ownerID, fileID, filepath.Ext(item.Filename))
	keyRef := fmt.Sprintf("files/%s", fileID)

	pr, pw := io.Pipe()
	go func() {
		ew, err := envelope.NewWriter(pw, key)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		_, copyErr := io.Copy(ew, item.Content)
		closeErr := ew.Close()
		pw.CloseWithError(errors.Join(copyErr, closeErr))
	}()

	if _, err := s.blobs.Write(ctx, storagePath, pr); err != nil {
		// Unblock the encryption goroutine; a failed write may not have
		// consumed a single byte of the pipe.
		pr.CloseWithError(err)
		return nil, fmt.Errorf("failed to store ciphertext: %w", err)
	}

	if err := s.custodian.Store(ctx, keyRef, key); err != nil {
		s.cleanupBlob(ctx, storagePath)
		return nil, fmt.Errorf("failed to store content key: %w", err)
	}

	file := &File{
		ID:           fileID,
		OwnerID:      ownerID,
		Filename:     item.Filename,
		KeyReference: keyRef,
		StoragePath:  storagePath,
		Size:         item.Size,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		s.cleanupBlob(ctx, storagePath)
		s.cleanupKey(ctx, keyRef)
		return nil, fmt.Errorf("failed to record file metadata: %w", err)
	}

	return file, nil
}

// List returns the owner's files, newest first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]File, error) {
	return s.store.ListUserFiles(ctx, ownerID)
}

// Download returns the file metadata and a decrypting reader over the
// ciphertext. The caller must close the reader. A key removed from the
// custodian out-of-band surfaces as vault.ErrKeyNotFound; tampered or
// corrupt ciphertext fails mid-stream with envelope.ErrDecryptionFailed.
func (s *Service) Download(ctx context.Context, ownerID, fileID uuid.UUID) (*File, io.ReadCloser, error) {
	file, err := s.store.GetUserFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}

	key, err := async.Submit(ctx, s.pool, file.KeyReference, func(ctx context.Context, ref string) ([]byte, error) {
		return s.custodian.Fetch(ctx, ref)
	}).Await()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch content key: %w", err)
	}

	ciphertext, err := s.blobs.Read(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ciphertext: %w", err)
	}

	plaintext, err := envelope.NewReader(ciphertext, key)
	if err != nil {
		ciphertext.Close()
		return nil, nil, err
	}

	return file, &decryptReadCloser{Reader: plaintext, closer: ciphertext}, nil
}

// Delete removes the metadata row first, then the blob, then best-effort the
// custodied key. A custodian outage never fails the deletion; it is logged
// for out-of-band cleanup.
func (s *Service) Delete(ctx context.Context, ownerID, fileID uuid.UUID) error {
	file, err := s.store.GetUserFile(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteFile(ctx, ownerID, fileID); err != nil {
		return err
	}

	// The row is gone; blob and key removal must finish even if the caller
	// has disconnected. A blob already missing on disk is tolerated by the
	// storage driver.
	cleanupCtx := context.WithoutCancel(ctx)
	if err := s.blobs.Delete(cleanupCtx, file.StoragePath); err != nil {
		s.log.Error("failed to delete ciphertext blob",
			logger.FileID(fileID.String()),
			slog.String("storage_path", file.StoragePath),
			logger.Error(err),
			logger.Component("files"),
		)
	}

	s.cleanupKey(cleanupCtx, file.KeyReference)
	return nil
}

func (s *Service) cleanupBlob(ctx context.Context, path string) {
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.log.Error("failed to roll back ciphertext blob",
			slog.String("storage_path", path),
			logger.Error(err),
			logger.Component("files"),
		)
	}
}

func (s *Service) cleanupKey(ctx context.Context, ref string) {
	if err := s.custodian.Delete(ctx, ref); err != nil {
		s.log.Error("failed to delete custodied key",
			slog.String("key_reference", ref),
			logger.Error(err),
			logger.Component("files"),
		)
	}
}

// decryptReadCloser pairs the decrypting reader with the underlying
// ciphertext stream's closer.
type decryptReadCloser struct {
	io.Reader
	closer io.Closer
}

func (d *decryptReadCloser) Close() error {
	return d.closer.Close()
}
