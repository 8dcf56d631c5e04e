package files_test

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cyphervault/modules/files"
	"github.com/dmitrymomot/cyphervault/pkg/blob"
)

// memFileStore is an in-memory FileStore for tests.
type memFileStore struct {
	mu    sync.Mutex
	files map[uuid.UUID]*files.File

	// failCreate, when set, is returned by CreateFile to simulate a metadata
	// persistence failure.
	failCreate error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[uuid.UUID]*files.File)}
}

func (m *memFileStore) CreateFile(ctx context.Context, file *files.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	cp := *file
	m.files[file.ID] = &cp
	return nil
}

func (m *memFileStore) GetUserFile(ctx context.Context, ownerID, fileID uuid.UUID) (*files.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[fileID]
	if !ok || f.OwnerID != ownerID {
		return nil, files.ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFileStore) ListUserFiles(ctx context.Context, ownerID uuid.UUID) ([]files.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []files.File
	for _, f := range m.files {
		if f.OwnerID == ownerID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memFileStore) DeleteFile(ctx context.Context, ownerID, fileID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[fileID]
	if !ok || f.OwnerID != ownerID {
		return files.ErrFileNotFound
	}
	delete(m.files, fileID)
	return nil
}

// unavailableStorage simulates a blob outage: every operation fails without
// consuming a byte of the incoming stream.
type unavailableStorage struct{}

func (unavailableStorage) Write(ctx context.Context, path string, r io.Reader) (int64, error) {
	return 0, blob.ErrUnavailable
}

func (unavailableStorage) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, blob.ErrUnavailable
}

func (unavailableStorage) Delete(ctx context.Context, path string) error {
	return blob.ErrUnavailable
}

func (unavailableStorage) Exists(ctx context.Context, path string) bool { return false }
