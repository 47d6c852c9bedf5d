package repo

import (
	"context"
	"sync"
)

// Well-known keys. The whole board lives under one key, the credential under another.
const (
	KeyTasks      = "tasks"
	KeyCredential = "openai_api_key"
)

// KV is the key-value store the board mirrors its state into.
// Get reports ok=false on a missing key; that is not an error.
//
// Update is an atomic read-modify-write of one key, safe against other
// processes sharing the store. If fn returns an error nothing is written
// and Update returns that error. fn may be called more than once.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// UpdateFunc receives the current value (ok=false when missing) and returns the new one.
type UpdateFunc func(cur string, ok bool) (string, error)

// MemoryKV keeps values in process memory. Used by tests and the "memory" backend.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (s *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryKV) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemoryKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	s.m[key] = next
	return nil
}
