// Package kv defines the named key-value storage the lyrics index persists
// through, and an in-memory implementation.
package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when no value is stored under the name.
var ErrNotFound = errors.New("kv: not found")

// Storage stores opaque values by name.
type Storage interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) error
	Remove(ctx context.Context, name string) error
}

// Memory is a Storage backed by a map. Safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Get returns a copy of the value stored under name.
func (m *Memory) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under name.
func (m *Memory) Set(_ context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[name] = append([]byte(nil), value...)
	return nil
}

// Remove deletes name. Removing a missing name is not an error.
func (m *Memory) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, name)
	return nil
}

// Verify Memory implements Storage at compile time.
var _ Storage = (*Memory)(nil)
