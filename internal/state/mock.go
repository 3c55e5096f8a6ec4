// internal/state/mock.go
package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/llehouerou/wavesearch/internal/kv"
	"github.com/llehouerou/wavesearch/internal/library"
)

// Mock is a test double for Manager backed by kv.Memory.
type Mock struct {
	*kv.Memory

	mu     sync.Mutex
	tracks []library.Track
	names  map[string]int
	closed bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{Memory: kv.NewMemory(), names: make(map[string]int)}
}

func (m *Mock) Set(ctx context.Context, name string, value []byte) error {
	m.mu.Lock()
	m.names[name] = len(value)
	m.mu.Unlock()
	return m.Memory.Set(ctx, name, value)
}

func (m *Mock) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	delete(m.names, name)
	m.mu.Unlock()
	return m.Memory.Remove(ctx, name)
}

func (m *Mock) SetDebounced(name string, value []byte) {
	_ = m.Set(context.Background(), name, value)
}

func (m *Mock) Entries(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Entry, 0, len(m.names))
	for name, size := range m.names {
		entries = append(entries, Entry{Name: name, Size: size, UpdatedAt: time.Time{}})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *Mock) SaveTracks(_ context.Context, tracks []library.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append([]library.Track(nil), tracks...)
	return nil
}

func (m *Mock) LoadTracks(_ context.Context) ([]library.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]library.Track(nil), m.tracks...), nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
