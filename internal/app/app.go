// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavesearch/internal/config"
	"github.com/llehouerou/wavesearch/internal/errmsg"
	"github.com/llehouerou/wavesearch/internal/library"
	"github.com/llehouerou/wavesearch/internal/lyrics"
	"github.com/llehouerou/wavesearch/internal/search"
	"github.com/llehouerou/wavesearch/internal/state"
)

// App wires the library scanner, the track and lyrics indices and their
// persistence.
type App struct {
	cfg     *config.Config
	logger  logrus.FieldLogger
	state   state.Interface
	scanner *library.Scanner
	source  *lyrics.Source
	now     func() time.Time

	tracks *search.Index

	// mu guards the lyrics store and the lyrics directory index.
	mu        sync.Mutex
	lyrics    *lyrics.Store
	lyricsDir map[string]string
}

// Option configures an App.
type Option func(*App)

// WithScanner overrides the library scanner.
func WithScanner(s *library.Scanner) Option {
	return func(a *App) {
		a.scanner = s
	}
}

// WithLyricsSource overrides where lyrics are read from.
func WithLyricsSource(s *lyrics.Source) Option {
	return func(a *App) {
		a.source = s
	}
}

// WithClock sets the time source used to stamp cached lyrics.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithSearchIndexOptions passes options to the track index.
func WithSearchIndexOptions(opts ...search.Option) Option {
	return func(a *App) {
		a.tracks = search.New(opts...)
	}
}

// New creates an app persisting through st. Call Open to restore state.
func New(cfg *config.Config, logger logrus.FieldLogger, st state.Interface, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		logger: logger,
		state:  st,
		now:    time.Now,
		tracks: search.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.scanner == nil {
		a.scanner = library.NewScanner(logger)
	}
	if a.source == nil {
		var sourceOpts []lyrics.SourceOption
		if cfg.LyricsCacheDir != "" {
			sourceOpts = append(sourceOpts, lyrics.WithCacheDir(cfg.LyricsCacheDir))
		}
		a.source = lyrics.NewSource(sourceOpts...)
	}
	a.lyrics = lyrics.NewStore(st, lyrics.WithClock(func() time.Time { return a.now() }))
	return a
}

// Open restores the library snapshot and the lyrics index. Unreadable state
// is logged and the corresponding index starts empty.
func (a *App) Open(ctx context.Context) error {
	tracks, err := a.state.LoadTracks(ctx)
	if err != nil {
		a.logger.WithError(err).Warn(errmsg.Format(errmsg.OpLibraryLoad, err))
		tracks = nil
	}
	a.tracks.UpdateIndex(tracks)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.lyrics.Load(ctx); err != nil {
		a.logger.WithError(err).Warn(errmsg.Format(errmsg.OpLyricsLoad, err))
		a.lyrics.ClearCache()
	}

	stats := a.lyrics.CacheStats()
	a.logger.WithFields(logrus.Fields{
		"tracks":        len(tracks),
		"lyrics_tracks": stats.CachedTracks,
		"lyrics_words":  stats.IndexedWords,
	}).Info("State restored")
	return nil
}

// RefreshStats summarizes a Refresh.
type RefreshStats struct {
	Scan          library.ScanStats
	Tracks        int
	LyricsFound   int
	LyricsRemoved int
}

// Refresh rescans the library sources, rebuilds the track index, reindexes
// lyrics and persists both.
func (a *App) Refresh(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats
	if !a.cfg.HasLibrarySources() {
		return stats, fmt.Errorf("%s: no library sources configured", errmsg.OpLibraryScan)
	}

	tracks, scanStats, err := a.scanner.Scan(ctx, a.cfg.LibrarySources)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scan = scanStats
	stats.Tracks = len(tracks)

	a.tracks.UpdateIndex(tracks)
	if err := a.state.SaveTracks(ctx, tracks); err != nil {
		return stats, fmt.Errorf("save tracks: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.lyricsDir = indexLyricsDirs(ctx, a.cfg.LyricsDirs, a.logger)

	present := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		present[t.ID] = struct{}{}
		if a.indexTrackLyrics(ctx, t) {
			stats.LyricsFound++
		}
	}
	stats.LyricsRemoved = a.pruneLyrics(present)

	if err := a.lyrics.Save(ctx); err != nil {
		return stats, fmt.Errorf("save lyrics: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"tracks":         stats.Tracks,
		"lyrics":         stats.LyricsFound,
		"lyrics_removed": stats.LyricsRemoved,
	}).Info("Library refreshed")
	return stats, nil
}

// pruneLyrics drops cached lyrics of tracks no longer in the library.
// Must be called with mu held.
func (a *App) pruneLyrics(present map[string]struct{}) int {
	removed := 0
	for _, id := range a.lyrics.TrackIDs() {
		if _, ok := present[id]; !ok {
			a.lyrics.RemoveFromCache(id)
			removed++
		}
	}
	return removed
}

// SearchOptions returns the configured track search options.
func (a *App) SearchOptions() search.SearchOptions {
	sc := a.cfg.GetSearchConfig()
	opts := search.DefaultSearchOptions()
	opts.Limit = sc.Limit
	opts.Threshold = sc.Threshold
	return opts
}

// SearchTracks searches the track index with the configured options.
func (a *App) SearchTracks(q string, includeMatches bool) []search.Result {
	opts := a.SearchOptions()
	opts.IncludeMatches = includeMatches
	return a.tracks.Search(q, opts)
}

// Suggest completes partial from the track index.
func (a *App) Suggest(partial string) []string {
	return a.tracks.Suggestions(partial, a.cfg.GetSearchConfig().Suggestions)
}

// SearchLyrics searches the lyrics index.
func (a *App) SearchLyrics(q string) []lyrics.SearchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lyrics.Search(q)
}

// Tracks returns the track index.
func (a *App) Tracks() *search.Index {
	return a.tracks
}

// Stats describes the indices and stored state.
type Stats struct {
	Tracks  search.Stats
	Lyrics  lyrics.CacheStats
	Entries []state.Entry
}

// Stats returns index sizes and stored entries.
func (a *App) Stats(ctx context.Context) (Stats, error) {
	a.mu.Lock()
	lyricsStats := a.lyrics.CacheStats()
	a.mu.Unlock()

	entries, err := a.state.Entries(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Tracks:  a.tracks.Stats(),
		Lyrics:  lyricsStats,
		Entries: entries,
	}, nil
}
