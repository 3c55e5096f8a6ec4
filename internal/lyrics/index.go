package lyrics

import (
	"sort"
	"strings"
	"time"

	"github.com/llehouerou/wavesearch/internal/kv"
	"github.com/llehouerou/wavesearch/internal/textutil"
)

const (
	// MaxResults caps the number of lines returned by Search.
	MaxResults = 50
	// MinLineScore is the lowest line relevance kept in results.
	MinLineScore = 0.3
	// minQueryLength is the shortest trimmed query that triggers a search.
	minQueryLength = 2
)

// Posting locates a word in a cached lyric line. Position is the word's
// first position within the line; lookups only rely on track and line.
type Posting struct {
	TrackID   string `json:"trackId"`
	LineIndex int    `json:"lineIndex"`
	Position  int    `json:"position"`
}

// SearchResult is a lyric line matching a query, with up to three lines of
// context (previous, matched, next).
type SearchResult struct {
	TrackID     string
	Title       string
	Artist      string
	MatchedLine string
	LineIndex   int
	Score       float64
	Context     []string
}

// CacheStats reports the size of the cache and index.
type CacheStats struct {
	CachedTracks int
	IndexedWords int
}

type cacheEntry struct {
	lyrics CachedLyrics
	seq    uint64
}

type wordEntry struct {
	postings []Posting
	seq      uint64
}

// Store caches lyrics per track and maintains an inverted word index over
// their lines. It is not safe for concurrent use: callers serialize access.
//
// Iteration follows insertion order (tracked by sequence numbers) so that
// search results and persisted state are deterministic.
type Store struct {
	storage kv.Storage
	name    string
	now     func() time.Time

	cache map[string]*cacheEntry
	index map[string]*wordEntry
	seq   uint64

	results   []SearchResult
	query     string
	searching bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStorageName sets the name the store persists under.
func WithStorageName(name string) StoreOption {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithClock sets the time source used to stamp entries added without a
// cache time.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store persisting through storage. storage may
// be nil for a purely in-memory store.
func NewStore(storage kv.Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		name:    DefaultStorageName,
		now:     time.Now,
		cache:   make(map[string]*cacheEntry),
		index:   make(map[string]*wordEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// AddToCache stores or replaces the lyrics of a track and indexes its lines.
// Replacing purges the previous postings first, so the index always
// reflects the current lyrics.
func (s *Store) AddToCache(entry CachedLyrics) {
	if entry.CachedAt.IsZero() {
		entry.CachedAt = s.now()
	}

	if existing, ok := s.cache[entry.TrackID]; ok {
		s.purgePostings(entry.TrackID)
		existing.lyrics = entry
	} else {
		s.cache[entry.TrackID] = &cacheEntry{lyrics: entry, seq: s.nextSeq()}
	}

	for lineIndex, text := range entry.IndexLines() {
		seen := make(map[string]struct{})
		for position, word := range textutil.Tokenize(text) {
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			s.addPosting(word, Posting{TrackID: entry.TrackID, LineIndex: lineIndex, Position: position})
		}
	}
}

func (s *Store) addPosting(word string, p Posting) {
	w, ok := s.index[word]
	if !ok {
		w = &wordEntry{seq: s.nextSeq()}
		s.index[word] = w
	}
	w.postings = append(w.postings, p)
}

// RemoveFromCache deletes a track's lyrics and every posting referencing it.
// Words left without postings are dropped from the index.
func (s *Store) RemoveFromCache(trackID string) {
	delete(s.cache, trackID)
	s.purgePostings(trackID)
}

func (s *Store) purgePostings(trackID string) {
	for word, w := range s.index {
		kept := w.postings[:0]
		for _, p := range w.postings {
			if p.TrackID != trackID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(s.index, word)
			continue
		}
		w.postings = kept
	}
}

// Cached returns the cached lyrics of a track.
func (s *Store) Cached(trackID string) (CachedLyrics, bool) {
	e, ok := s.cache[trackID]
	if !ok {
		return CachedLyrics{}, false
	}
	return e.lyrics, true
}

// Postings returns a copy of the postings indexed under word.
func (s *Store) Postings(word string) []Posting {
	w, ok := s.index[word]
	if !ok {
		return nil
	}
	return append([]Posting(nil), w.postings...)
}

// CacheStats returns the number of cached tracks and distinct indexed words.
func (s *Store) CacheStats() CacheStats {
	return CacheStats{CachedTracks: len(s.cache), IndexedWords: len(s.index)}
}

// ClearCache drops the cache, the index and any search state.
func (s *Store) ClearCache() {
	s.cache = make(map[string]*cacheEntry)
	s.index = make(map[string]*wordEntry)
	s.ClearSearch()
}

// ClearSearch resets the search state. The cache and index are untouched.
func (s *Store) ClearSearch() {
	s.results = nil
	s.query = ""
	s.searching = false
}

// Results returns the results of the last search.
func (s *Store) Results() []SearchResult {
	return s.results
}

// SearchQuery returns the query of the last search.
func (s *Store) SearchQuery() string {
	return s.query
}

// IsSearching reports whether a search is in progress.
func (s *Store) IsSearching() bool {
	return s.searching
}

// orderedWords returns the indexed words in insertion order.
func (s *Store) orderedWords() []string {
	words := make([]string, 0, len(s.index))
	for w := range s.index {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		return s.index[words[i]].seq < s.index[words[j]].seq
	})
	return words
}

// TrackIDs returns the cached track IDs in insertion order.
func (s *Store) TrackIDs() []string {
	return s.orderedTrackIDs()
}

// orderedTrackIDs returns the cached track IDs in insertion order.
func (s *Store) orderedTrackIDs() []string {
	ids := make([]string, 0, len(s.cache))
	for id := range s.cache {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.cache[ids[i]].seq < s.cache[ids[j]].seq
	})
	return ids
}

// Search finds lyric lines matching query. Queries shorter than two
// characters (after trimming) clear the results and return nothing.
//
// Index words are matched loosely: an index word matches a query word when
// either contains the other. Each candidate line is then rescored: a line
// containing the whole query scores 1, otherwise the fraction of query
// words found in the line. Lines scoring below MinLineScore are dropped.
// Results are ordered by score, ties in discovery order, and capped at
// MaxResults.
func (s *Store) Search(query string) []SearchResult {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < minQueryLength {
		s.results = nil
		s.query = query
		s.searching = false
		return nil
	}

	s.searching = true
	s.query = query
	defer func() { s.searching = false }()

	queryWords := textutil.Tokenize(trimmed)
	candidates := s.candidateLines(queryWords)

	lowerQuery := strings.ToLower(trimmed)
	var results []SearchResult
	for _, c := range candidates {
		entry, ok := s.cache[c.trackID]
		if !ok {
			continue
		}
		lines := entry.lyrics.IndexLines()
		for _, lineIndex := range c.lines {
			if lineIndex < 0 || lineIndex >= len(lines) {
				continue
			}
			score := lineScore(lines[lineIndex], lowerQuery, queryWords)
			if score < MinLineScore {
				continue
			}
			results = append(results, SearchResult{
				TrackID:     c.trackID,
				Title:       entry.lyrics.Title,
				Artist:      entry.lyrics.Artist,
				MatchedLine: lines[lineIndex],
				LineIndex:   lineIndex,
				Score:       score,
				Context:     contextLines(lines, lineIndex),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	s.results = results
	return results
}

type candidate struct {
	trackID string
	lines   []int
}

// candidateLines unions the postings of every index word matching a query
// word, grouped per track in discovery order.
func (s *Store) candidateLines(queryWords []string) []candidate {
	if len(queryWords) == 0 {
		return nil
	}

	words := s.orderedWords()
	var out []candidate
	byTrack := make(map[string]int)
	seen := make(map[Posting]struct{})

	for _, qw := range queryWords {
		for _, word := range words {
			if !textutil.ContainsEither(word, qw) {
				continue
			}
			for _, p := range s.index[word].postings {
				key := Posting{TrackID: p.TrackID, LineIndex: p.LineIndex}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}

				i, ok := byTrack[p.TrackID]
				if !ok {
					i = len(out)
					byTrack[p.TrackID] = i
					out = append(out, candidate{trackID: p.TrackID})
				}
				out[i].lines = append(out[i].lines, p.LineIndex)
			}
		}
	}
	return out
}

// lineScore rates how well a line matches the query.
func lineScore(line, lowerQuery string, queryWords []string) float64 {
	if strings.Contains(strings.ToLower(line), lowerQuery) {
		return 1
	}
	if len(queryWords) == 0 {
		return 0
	}

	lineWords := textutil.Tokenize(line)
	matched := 0
	for _, qw := range queryWords {
		for _, lw := range lineWords {
			if textutil.ContainsEither(lw, qw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(queryWords))
}

// contextLines returns the previous, matched and next lines, omitting the
// ones outside the lyrics.
func contextLines(lines []string, i int) []string {
	start := max(i-1, 0)
	end := min(i+2, len(lines))
	return append([]string(nil), lines[start:end]...)
}
