package repositories

import (
	"fmt"
	"sync"
)

// MockKeyValueStorage is an in-memory implementation of KeyValueStorage.
// Individual keys can be made to fail so that storage faults can be exercised.
type MockKeyValueStorage struct {
	values    map[string]string
	failRead  map[string]bool
	failWrite map[string]bool
	mu        sync.RWMutex
}

// NewMockKeyValueStorage creates a new instance of MockKeyValueStorage.
func NewMockKeyValueStorage() *MockKeyValueStorage {
	return &MockKeyValueStorage{
		values:    make(map[string]string),
		failRead:  make(map[string]bool),
		failWrite: make(map[string]bool),
	}
}

// NewMockStorageFactory returns a factory handing out one in-memory storage per namespace.
func NewMockStorageFactory() StorageFactory {
	var mu sync.Mutex
	spaces := make(map[string]*MockKeyValueStorage)
	return func(namespace string) KeyValueStorage {
		mu.Lock()
		defer mu.Unlock()
		s, ok := spaces[namespace]
		if !ok {
			s = NewMockKeyValueStorage()
			spaces[namespace] = s
		}
		return s
	}
}

// Get returns the value stored under key.
func (s *MockKeyValueStorage) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failRead[key] {
		return "", false, fmt.Errorf("read %s: %w", key, ErrStorageUnavailable)
	}
	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores value under key.
func (s *MockKeyValueStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrite[key] {
		return fmt.Errorf("write %s: %w", key, ErrStorageUnavailable)
	}
	s.values[key] = value
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *MockKeyValueStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrite[key] {
		return fmt.Errorf("remove %s: %w", key, ErrStorageUnavailable)
	}
	delete(s.values, key)
	return nil
}

// FailReads makes every subsequent Get of the given keys fail.
func (s *MockKeyValueStorage) FailReads(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.failRead[k] = true
	}
}

// FailWrites makes every subsequent Set or Remove of the given keys fail.
func (s *MockKeyValueStorage) FailWrites(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.failWrite[k] = true
	}
}

// Heal clears all injected faults.
func (s *MockKeyValueStorage) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead = make(map[string]bool)
	s.failWrite = make(map[string]bool)
}

// Raw returns the stored value without fault injection, for assertions.
func (s *MockKeyValueStorage) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of stored keys.
func (s *MockKeyValueStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
