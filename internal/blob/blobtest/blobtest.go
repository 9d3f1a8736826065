// Package blobtest provides an in-memory blob.Store for tests.
package blobtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/nano-social/backend/internal/blob"
)

// Store keeps uploads in memory and resolves keys to deterministic URLs.
type Store struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Resolved int

	StoreErr   error
	ResolveErr error
}

// New creates an empty Store.
func New() *Store {
	return &Store{Objects: make(map[string][]byte)}
}

// Store records data under a fresh key.
func (s *Store) Store(_ context.Context, class string, data []byte, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StoreErr != nil {
		return "", s.StoreErr
	}
	key := blob.NewKey(class, filename)
	s.Objects[key] = append([]byte(nil), data...)
	return key, nil
}

// ResolveURL returns URL(class, key) and counts the call.
func (s *Store) ResolveURL(_ context.Context, class, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ResolveErr != nil {
		return "", s.ResolveErr
	}
	s.Resolved++
	return URL(class, key), nil
}

// URL is the address Store.ResolveURL returns for key.
func URL(class, key string) string {
	return fmt.Sprintf("https://blob.test/%s/%s?sig=test", class, key)
}
