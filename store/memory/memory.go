// Package memory provides an in-memory store repository, primarily for tests.
package memory

import (
	"fmt"
	"sync"

	"github.com/nexocrm/nexo-go/store"
)

// Store implements store.Repository with an in-memory map.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ store.Repository = (*Store)(nil)

// NewRepository returns an empty in-memory Repository.
func NewRepository() *Store {
	return &Store{data: make(map[string][]byte)}
}

func recordKey(bucket, key string) string {
	return bucket + ":" + key
}

func (s *Store) Put(bucket, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.data[recordKey(bucket, key)] = v
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(bucket, key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.data[recordKey(bucket, key)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, store.ErrNotFound)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Delete(bucket, key string) error {
	s.mu.Lock()
	delete(s.data, recordKey(bucket, key))
	s.mu.Unlock()
	return nil
}
