package cache

import (
	"context"
	"sync"

	"rawbazaar/backend/internal/store"
)

// NoopBlobStore discards saves and never has anything to load.
type NoopBlobStore struct{}

func (NoopBlobStore) LoadBlob(_ context.Context, _ string) ([]byte, error) {
	return nil, store.ErrNotFound
}

func (NoopBlobStore) SaveBlob(_ context.Context, _ string, _ []byte) error {
	return nil
}

// MemoryBlobStore keeps blobs in process memory.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) LoadBlob(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (m *MemoryBlobStore) SaveBlob(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

var (
	_ store.BlobStore = NoopBlobStore{}
	_ store.BlobStore = (*MemoryBlobStore)(nil)
	_ store.BlobStore = (*RedisBlobStore)(nil)
)
