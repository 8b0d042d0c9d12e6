package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage persists uploaded media and returns a publicly reachable URL.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// StorageKey builds a date-partitioned object key for an upload.
func StorageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("profile_images/%d/%d/%d/%s", d.Year(), d.Month(), d.Day(), uuid.NewString())
}

type memoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStorage builds an in-memory object store for development and
// testing.
func NewMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return "memory://" + key, nil
}

// Get returns a stored object; test helper.
func (s *memoryStorage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}
