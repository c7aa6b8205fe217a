package storage

import (
	"sync"

	"github.com/jrsteele09/go-admin-console/internal/errors"
)

// LocalStore is an in-memory Repo scoped to the running process.
type LocalStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Repo = (*LocalStore)(nil)

// NewLocalStore creates an empty process-local store
func NewLocalStore() *LocalStore {
	return &LocalStore{
		values: make(map[string]string),
	}
}

func (s *LocalStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	return v, nil
}

func (s *LocalStore) Set(key, value string) error {
	if key == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "[LocalStore Set] key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
