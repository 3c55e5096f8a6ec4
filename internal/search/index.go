// Package search provides fuzzy, weighted multi-field search over library
// tracks with structured key:value filters.
package search

import (
	"strings"
	"sync"

	"github.com/llehouerou/wavesearch/internal/fuzzy"
	"github.com/llehouerou/wavesearch/internal/library"
	"github.com/llehouerou/wavesearch/internal/query"
)

// Searched field names, as reported in MatchInfo.Field.
const (
	FieldTitle       = "title"
	FieldArtist      = "artist"
	FieldAlbum       = "album"
	FieldGenre       = "genre"
	FieldReleaseDate = "releaseDate"
)

// Field weights used for fuzzy matching.
const (
	weightTitle       = 0.35
	weightArtist      = 0.30
	weightAlbum       = 0.20
	weightGenre       = 0.10
	weightReleaseDate = 0.05
)

const (
	// DefaultLimit is the default maximum number of results.
	DefaultLimit = 50
	// DefaultThreshold is the default minimum score of a fuzzy result.
	DefaultThreshold = 0.3
	// DefaultSuggestions is the default number of suggestions.
	DefaultSuggestions = 5

	minSuggestionLength = 2
)

// SearchOptions controls a search.
type SearchOptions struct {
	// Limit caps the number of results. Values <= 0 use DefaultLimit.
	Limit int
	// Threshold is the minimum score a fuzzy result needs. Values <= 0 use
	// DefaultThreshold.
	Threshold float64
	// IncludeScore asks for scores to be shown. Scores are always computed
	// and populated.
	IncludeScore bool
	// IncludeMatches populates Result.Matches for highlighting.
	IncludeMatches bool
}

// DefaultSearchOptions returns limit 50, threshold 0.3, scores included and
// matches omitted.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:        DefaultLimit,
		Threshold:    DefaultThreshold,
		IncludeScore: true,
	}
}

// MatchInfo locates the query within a field value. Ranges are inclusive
// [start, end] rune offsets into Value.
type MatchInfo struct {
	Field  string
	Value  string
	Ranges [][2]int
}

// Result is a track matching a search with its score in [0, 1], 1 best.
type Result struct {
	Track   library.Track
	Score   float64
	Matches []MatchInfo
}

// Stats describes the index contents.
type Stats struct {
	TrackCount int
}

// Membership answers liked and playlist questions the index cannot answer
// from track records alone.
type Membership interface {
	IsLiked(trackID string) bool
	InPlaylist(trackID, playlist string) bool
}

// Option configures an Index.
type Option func(*Index)

// WithMembership enforces liked: and playlist: filters through m. Without
// it those filters accept every track.
func WithMembership(m Membership) Option {
	return func(ix *Index) {
		ix.membership = m
	}
}

// WithFuzzyOptions passes options to the underlying fuzzy index.
func WithFuzzyOptions(opts ...fuzzy.Option) Option {
	return func(ix *Index) {
		ix.fuzzyOpts = append(ix.fuzzyOpts, opts...)
	}
}

// Index is a searchable collection of tracks. Safe for concurrent use;
// rebuilds are atomic with respect to searches.
type Index struct {
	mu         sync.RWMutex
	tracks     []library.Track
	ids        map[string]struct{}
	fuzzy      *fuzzy.Index
	fuzzyOpts  []fuzzy.Option
	membership Membership
}

// New creates an empty index.
func New(opts ...Option) *Index {
	ix := &Index{}
	for _, opt := range opts {
		opt(ix)
	}
	ix.ids = make(map[string]struct{})
	ix.fuzzy = fuzzy.New(ix.fuzzyOpts...)
	return ix
}

// UpdateIndex replaces the collection with tracks and rebuilds the index.
// Tracks are used as given; duplicate IDs are kept.
func (ix *Index) UpdateIndex(tracks []library.Track) {
	copied := append([]library.Track(nil), tracks...)
	ids := make(map[string]struct{}, len(copied))
	for _, t := range copied {
		ids[t.ID] = struct{}{}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.tracks = copied
	ix.ids = ids
	ix.rebuild()
}

// AddTracks appends the tracks whose IDs are not present yet, including
// duplicates within tracks, and rebuilds the index.
func (ix *Index) AddTracks(tracks []library.Track) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, t := range tracks {
		if _, ok := ix.ids[t.ID]; ok {
			continue
		}
		ix.ids[t.ID] = struct{}{}
		ix.tracks = append(ix.tracks, t)
	}
	ix.rebuild()
}

// rebuild must be called with mu held for writing.
func (ix *Index) rebuild() {
	docs := make([]fuzzy.Document, len(ix.tracks))
	for i, t := range ix.tracks {
		docs[i] = document(t)
	}
	fz := fuzzy.New(ix.fuzzyOpts...)
	fz.Rebuild(docs)
	ix.fuzzy = fz
}

func document(t library.Track) fuzzy.Document {
	fields := make([]fuzzy.Field, 0, 4+len(t.Artists))
	fields = append(fields, fuzzy.Field{Name: FieldTitle, Value: t.Title, Weight: weightTitle})
	for _, a := range t.Artists {
		fields = append(fields, fuzzy.Field{Name: FieldArtist, Value: a.Name, Weight: weightArtist})
	}
	fields = append(fields,
		fuzzy.Field{Name: FieldAlbum, Value: t.AlbumTitle(), Weight: weightAlbum},
		fuzzy.Field{Name: FieldGenre, Value: t.Genre, Weight: weightGenre},
		fuzzy.Field{Name: FieldReleaseDate, Value: t.ReleaseDate(), Weight: weightReleaseDate},
	)
	return fuzzy.Document{Fields: fields}
}

// Search parses q and returns the matching tracks by descending score.
// An empty or whitespace-only query returns nothing.
func (ix *Index) Search(q string, opts SearchOptions) []Result {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	return ix.SearchWithParsed(query.Parse(q), opts)
}

// SearchWithParsed runs a search on an already parsed query.
//
// With filters and no free text, the tracks satisfying every filter are
// returned in collection order with score 1. Otherwise the free text is
// fuzzy matched, results scoring below the threshold are dropped, and the
// remaining ones must satisfy every filter.
func (ix *Index) SearchWithParsed(p query.Parsed, opts SearchOptions) []Result {
	if p.IsEmpty() {
		return nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if p.Text == "" {
		return ix.browse(p.Filters, limit)
	}

	var results []Result
	for _, fr := range ix.fuzzy.Query(p.Text, 2*limit) {
		score := 1 - fr.Distance
		if score < threshold {
			continue
		}
		t := ix.tracks[fr.Ref]
		if !ix.matchesAll(t, p.Filters) {
			continue
		}
		r := Result{Track: t, Score: score}
		if opts.IncludeMatches {
			r.Matches = matchInfos(fr.Matches)
		}
		results = append(results, r)
		if len(results) == limit {
			break
		}
	}
	return results
}

func (ix *Index) browse(filters []query.Filter, limit int) []Result {
	var results []Result
	for _, t := range ix.tracks {
		if !ix.matchesAll(t, filters) {
			continue
		}
		results = append(results, Result{Track: t, Score: 1})
		if len(results) == limit {
			break
		}
	}
	return results
}

func matchInfos(matches []fuzzy.FieldMatch) []MatchInfo {
	out := make([]MatchInfo, len(matches))
	for i, m := range matches {
		out[i] = MatchInfo{Field: m.Field, Value: m.Value, Ranges: m.Ranges}
	}
	return out
}

// QuickSearch returns the tracks of a default search capped at limit.
func (ix *Index) QuickSearch(q string, limit int) []library.Track {
	opts := DefaultSearchOptions()
	opts.Limit = limit
	results := ix.Search(q, opts)
	tracks := make([]library.Track, len(results))
	for i, r := range results {
		tracks[i] = r.Track
	}
	return tracks
}

// Stats returns the number of indexed tracks.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{TrackCount: len(ix.tracks)}
}

// Tracks returns a copy of the indexed collection.
func (ix *Index) Tracks() []library.Track {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]library.Track(nil), ix.tracks...)
}
