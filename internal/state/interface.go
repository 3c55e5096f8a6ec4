// internal/state/interface.go
package state

import (
	"context"

	"github.com/llehouerou/wavesearch/internal/kv"
	"github.com/llehouerou/wavesearch/internal/library"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	kv.Storage
	SetDebounced(name string, value []byte)
	Entries(ctx context.Context) ([]Entry, error)
	SaveTracks(ctx context.Context, tracks []library.Track) error
	LoadTracks(ctx context.Context) ([]library.Track, error)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
