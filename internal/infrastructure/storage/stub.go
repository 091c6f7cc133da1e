package storage

import (
	"context"
	"sync"
	"time"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// StubObjectStorage keeps objects in memory. Use it for development and tests.
type StubObjectStorage struct {
	// BaseURL prefixes generated URLs
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
	now     func() time.Time
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "http://localhost:3000/static",
		objects: make(map[string][]byte),
		now:     time.Now,
	}
}

var _ shared.ObjectStorage = (*StubObjectStorage)(nil)

// Upload stores a copy of data and returns its URL
func (s *StubObjectStorage) Upload(_ context.Context, folder, filename string, data []byte, _ string) (string, error) {
	key := ObjectKey(folder, filename, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return s.BaseURL + "/" + key, nil
}

// DeleteByURL forgets the object behind url
func (s *StubObjectStorage) DeleteByURL(_ context.Context, url string) error {
	key, ok := keyFromURL(s.BaseURL, url)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Has reports whether the object behind url is stored
func (s *StubObjectStorage) Has(url string) bool {
	key, ok := keyFromURL(s.BaseURL, url)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.objects[key]
	return exists
}
