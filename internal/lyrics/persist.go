package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/wavesearch/internal/kv"
)

const (
	// DefaultStorageName is the storage name the store persists under.
	DefaultStorageName = "lyrics-search"
	// storageVersion is the version of the persisted envelope.
	storageVersion = 1
)

// ErrUnsupportedVersion is returned when persisted state was written by an
// incompatible version.
var ErrUnsupportedVersion = errors.New("lyrics: unsupported storage version")

// envelope is the persisted form:
// {"state":{"cache":[[id,lyrics],...],"invertedIndex":[[word,[posting,...]],...]},"version":1}.
// Search state is never persisted.
type envelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	Cache         []cachePair `json:"cache"`
	InvertedIndex []indexPair `json:"invertedIndex"`
}

type lineJSON struct {
	Time int64  `json:"time"` // milliseconds
	Text string `json:"text"`
}

type cachedJSON struct {
	TrackID     string     `json:"trackId"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	Lines       []lineJSON `json:"lines"`
	PlainLyrics *string    `json:"plainLyrics"`
	CachedAt    int64      `json:"cachedAt"` // unix milliseconds
}

// cachePair marshals as a two-element array [trackID, lyrics].
type cachePair struct {
	TrackID string
	Lyrics  cachedJSON
}

func (p cachePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.TrackID, p.Lyrics})
}

func (p *cachePair) UnmarshalJSON(b []byte) error {
	return unmarshalPair(b, &p.TrackID, &p.Lyrics)
}

// indexPair marshals as a two-element array [word, postings].
type indexPair struct {
	Word     string
	Postings []Posting
}

func (p indexPair) MarshalJSON() ([]byte, error) {
	postings := p.Postings
	if postings == nil {
		postings = []Posting{}
	}
	return json.Marshal([]any{p.Word, postings})
}

func (p *indexPair) UnmarshalJSON(b []byte) error {
	return unmarshalPair(b, &p.Word, &p.Postings)
}

func unmarshalPair(b []byte, key, value any) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [key, value] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], key); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], value)
}

func toJSON(c CachedLyrics) cachedJSON {
	out := cachedJSON{
		TrackID:     c.TrackID,
		Title:       c.Title,
		Artist:      c.Artist,
		PlainLyrics: c.PlainLyrics,
	}
	if !c.CachedAt.IsZero() {
		out.CachedAt = c.CachedAt.UnixMilli()
	}
	if c.Lines != nil {
		out.Lines = make([]lineJSON, len(c.Lines))
		for i, l := range c.Lines {
			out.Lines[i] = lineJSON{Time: l.Time.Milliseconds(), Text: l.Text}
		}
	}
	return out
}

func fromJSON(c cachedJSON) CachedLyrics {
	out := CachedLyrics{
		TrackID:     c.TrackID,
		Title:       c.Title,
		Artist:      c.Artist,
		PlainLyrics: c.PlainLyrics,
	}
	if c.CachedAt != 0 {
		out.CachedAt = time.UnixMilli(c.CachedAt)
	}
	if c.Lines != nil {
		out.Lines = make([]Line, len(c.Lines))
		for i, l := range c.Lines {
			out.Lines[i] = Line{Time: time.Duration(l.Time) * time.Millisecond, Text: l.Text}
		}
	}
	return out
}

// MarshalState serializes the cache and inverted index in insertion order.
func (s *Store) MarshalState() ([]byte, error) {
	env := envelope{Version: storageVersion}

	ids := s.orderedTrackIDs()
	env.State.Cache = make([]cachePair, 0, len(ids))
	for _, id := range ids {
		env.State.Cache = append(env.State.Cache, cachePair{TrackID: id, Lyrics: toJSON(s.cache[id].lyrics)})
	}

	words := s.orderedWords()
	env.State.InvertedIndex = make([]indexPair, 0, len(words))
	for _, w := range words {
		env.State.InvertedIndex = append(env.State.InvertedIndex, indexPair{Word: w, Postings: s.index[w].postings})
	}

	return json.Marshal(env)
}

// UnmarshalState replaces the cache and index with serialized state and
// resets the search state. On error the store is left unchanged.
func (s *Store) UnmarshalState(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode lyrics state: %w", err)
	}
	if env.Version != storageVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	cache := make(map[string]*cacheEntry, len(env.State.Cache))
	index := make(map[string]*wordEntry, len(env.State.InvertedIndex))
	seq := uint64(0)

	for _, p := range env.State.Cache {
		seq++
		lyrics := fromJSON(p.Lyrics)
		lyrics.TrackID = p.TrackID
		cache[p.TrackID] = &cacheEntry{lyrics: lyrics, seq: seq}
	}
	for _, p := range env.State.InvertedIndex {
		if len(p.Postings) == 0 {
			continue
		}
		seq++
		index[p.Word] = &wordEntry{postings: p.Postings, seq: seq}
	}

	s.cache = cache
	s.index = index
	s.seq = seq
	s.ClearSearch()
	return nil
}

// Load restores the persisted state. A missing entry leaves the store empty
// and is not an error.
func (s *Store) Load(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	data, err := s.storage.Get(ctx, s.name)
	if errors.Is(err, kv.ErrNotFound) {
		s.ClearCache()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lyrics state: %w", err)
	}
	return s.UnmarshalState(data)
}

// Save persists the cache and index.
func (s *Store) Save(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	data, err := s.MarshalState()
	if err != nil {
		return fmt.Errorf("encode lyrics state: %w", err)
	}
	if err := s.storage.Set(ctx, s.name, data); err != nil {
		return fmt.Errorf("save lyrics state: %w", err)
	}
	return nil
}

// StorageName returns the name the store persists under.
func (s *Store) StorageName() string {
	return s.name
}
