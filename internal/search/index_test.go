package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesearch/internal/library"
	"github.com/llehouerou/wavesearch/internal/query"
)

func track(id, title, artist, album, date, genre string) library.Track {
	t := library.Track{
		ID:      id,
		Title:   title,
		Artists: library.SplitArtists(artist),
		Genre:   genre,
	}
	if album != "" || date != "" {
		t.Album = &library.Album{Title: album, ReleaseDate: date}
	}
	return t
}

func testTracks() []library.Track {
	return []library.Track{
		track("t1", "Robot Rock", "Daft Punk", "Human After All", "2005-03-14", "Electronic"),
		track("t2", "One More Time", "Daft Punk", "Discovery", "2001-03-12", "Electronic"),
		track("t3", "Paranoid Android", "Radiohead", "OK Computer", "1997-05-21", "Rock"),
		track("t4", "Smells Like Teen Spirit", "Nirvana", "Nevermind", "1991-09-24", "rock"),
		track("t5", "Teardrop", "Massive Attack", "Mezzanine", "1998-04-20", "Trip-Hop"),
		track("t6", "Bitter Sweet Symphony", "The Verve", "Urban Hymns", "1997-09-29", "Britpop"),
		track("t7", "Windowlicker", "Aphex Twin", "Windowlicker", "1999-03-22", "Electronic"),
		track("t8", "Untitled Demo", "Unknown Artist", "", "", ""),
	}
}

func newTestIndex(opts ...Option) *Index {
	ix := New(opts...)
	ix.UpdateIndex(testTracks())
	return ix
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Track.ID
	}
	return out
}

func TestIndex_SearchExactTitle(t *testing.T) {
	ix := newTestIndex()

	results := ix.Search("robot", DefaultSearchOptions())
	require.NotEmpty(t, results)
	assert.Equal(t, "t1", results[0].Track.ID)
	assert.Greater(t, results[0].Score, 0.99)
	assert.Nil(t, results[0].Matches)
}

func TestIndex_SearchTypo(t *testing.T) {
	ix := newTestIndex()

	results := ix.Search("teardrp", DefaultSearchOptions())
	require.NotEmpty(t, results)
	assert.Equal(t, "t5", results[0].Track.ID)
}

func TestIndex_SearchDiacritics(t *testing.T) {
	ix := New()
	ix.UpdateIndex([]library.Track{
		track("c1", "Café del Mar", "Energy 52", "", "", ""),
		track("c2", "Other", "Someone", "", "", ""),
	})

	results := ix.Search("cafe", DefaultSearchOptions())
	require.NotEmpty(t, results)
	assert.Equal(t, "c1", results[0].Track.ID)
}

func TestIndex_SearchInvariants(t *testing.T) {
	ix := newTestIndex()

	for _, q := range []string{"a", "rock", "daft", "the", "er", "windowlicker"} {
		for _, limit := range []int{1, 2, 5, 50} {
			opts := DefaultSearchOptions()
			opts.Limit = limit
			results := ix.Search(q, opts)

			assert.LessOrEqual(t, len(results), limit, "query %q limit %d", q, limit)
			for i, r := range results {
				assert.GreaterOrEqual(t, r.Score, opts.Threshold, "query %q", q)
				assert.LessOrEqual(t, r.Score, 1.0, "query %q", q)
				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].Score, r.Score, "query %q sorted", q)
				}
			}
		}
	}
}

func TestIndex_SearchThreshold(t *testing.T) {
	ix := newTestIndex()

	opts := DefaultSearchOptions()
	opts.Threshold = 0.99
	assert.Equal(t, []string{"t1"}, ids(ix.Search("robot", opts)))

	opts.Threshold = 1.1
	assert.Empty(t, ix.Search("robot", opts))
}

func TestIndex_SearchZeroOptionsUseDefaults(t *testing.T) {
	ix := newTestIndex()

	for _, q := range []string{"a", "rock", "xyzzy", "teardrp"} {
		assert.Equal(t, ix.Search(q, DefaultSearchOptions()), ix.Search(q, SearchOptions{IncludeScore: true}), "query %q", q)
		for _, r := range ix.Search(q, SearchOptions{}) {
			assert.GreaterOrEqual(t, r.Score, DefaultThreshold, "query %q", q)
		}
	}

	opts := DefaultSearchOptions()
	opts.Threshold = -1
	assert.Equal(t, ix.Search("er", DefaultSearchOptions()), ix.Search("er", opts))
}

func TestIndex_SearchMatchesCombiningAccent(t *testing.T) {
	ix := New()
	ix.UpdateIndex([]library.Track{track("c1", "Cafe\u0301 del Mar", "Energy 52", "", "", "")})

	opts := DefaultSearchOptions()
	opts.IncludeMatches = true
	results := ix.Search("del", opts)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Matches)
	m := results[0].Matches[0]
	assert.Equal(t, FieldTitle, m.Field)
	assert.Equal(t, [][2]int{{6, 8}}, m.Ranges)
}

func TestIndex_SearchMatches(t *testing.T) {
	ix := newTestIndex()

	opts := DefaultSearchOptions()
	opts.IncludeMatches = true
	results := ix.Search("robot", opts)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Matches, MatchInfo{
		Field:  FieldTitle,
		Value:  "Robot Rock",
		Ranges: [][2]int{{0, 4}},
	})
}

func TestIndex_SearchEmpty(t *testing.T) {
	ix := newTestIndex()

	assert.Empty(t, ix.Search("", DefaultSearchOptions()))
	assert.Empty(t, ix.Search("   \t", DefaultSearchOptions()))
	assert.Empty(t, ix.SearchWithParsed(query.Parsed{}, DefaultSearchOptions()))
	assert.Empty(t, New().Search("robot", DefaultSearchOptions()))
}

func TestIndex_FilterOnlyBrowse(t *testing.T) {
	ix := newTestIndex()

	results := ix.Search("genre:rock", DefaultSearchOptions())
	require.Len(t, results, 2)
	assert.Equal(t, []string{"t3", "t4"}, ids(results))
	for _, r := range results {
		assert.InDelta(t, 1.0, r.Score, 1e-9)
		assert.Nil(t, r.Matches)
	}

	opts := DefaultSearchOptions()
	opts.Limit = 1
	assert.Equal(t, []string{"t3"}, ids(ix.Search("genre:rock", opts)))
}

func TestIndex_Filters(t *testing.T) {
	ix := newTestIndex()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"artist case-insensitive contains", "artist:PUNK", []string{"t1", "t2"}},
		{"quoted artist", `artist:"daft punk"`, []string{"t1", "t2"}},
		{"album contains", "album:disc", []string{"t2"}},
		{"album excludes tracks without album", "album:a", []string{"t1", "t5", "t6"}},
		{"genre contains", "genre:hop", []string{"t5"}},
		{"year exact", "year:1999", []string{"t7"}},
		{"year prefix does not match", "year:199", nil},
		{"year mismatch", "year:2000", nil},
		{"filters are ANDed", "genre:electronic year:2001", []string{"t2"}},
		{"no match", "artist:beatles", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(ix.Search(tt.query, DefaultSearchOptions()))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_FuzzyWithFilters(t *testing.T) {
	ix := newTestIndex()

	assert.Equal(t, []string{"t2"}, ids(ix.Search("daft year:2001", DefaultSearchOptions())))

	results := ix.Search("daft artist:punk", DefaultSearchOptions())
	assert.ElementsMatch(t, []string{"t1", "t2"}, ids(results))
}

func TestIndex_SearchWithParsed(t *testing.T) {
	ix := newTestIndex()

	p := query.Parsed{Filters: []query.Filter{{Type: query.FilterGenre, Value: "rock"}}}
	assert.Equal(t, []string{"t3", "t4"}, ids(ix.SearchWithParsed(p, DefaultSearchOptions())))

	assert.Equal(t,
		ix.Search("robot genre:electronic", DefaultSearchOptions()),
		ix.SearchWithParsed(query.Parse("robot genre:electronic"), DefaultSearchOptions()))
}

func TestIndex_LikedPlaylistPassThrough(t *testing.T) {
	ix := newTestIndex()

	assert.Len(t, ix.Search("liked:true", DefaultSearchOptions()), len(testTracks()))
	assert.Len(t, ix.Search("playlist:gym", DefaultSearchOptions()), len(testTracks()))
	assert.Equal(t, []string{"t3", "t4"}, ids(ix.Search("genre:rock liked:true", DefaultSearchOptions())))
}

type fakeMembership struct {
	liked     map[string]bool
	playlists map[string][]string
}

func (f fakeMembership) IsLiked(id string) bool { return f.liked[id] }

func (f fakeMembership) InPlaylist(id, playlist string) bool {
	for _, member := range f.playlists[playlist] {
		if member == id {
			return true
		}
	}
	return false
}

func TestIndex_WithMembership(t *testing.T) {
	ix := newTestIndex(WithMembership(fakeMembership{
		liked:     map[string]bool{"t2": true, "t5": true},
		playlists: map[string][]string{"gym": {"t1", "t4"}},
	}))

	assert.Equal(t, []string{"t2", "t5"}, ids(ix.Search("liked:true", DefaultSearchOptions())))
	assert.Equal(t, []string{"t1", "t3", "t4", "t6", "t7", "t8"}, ids(ix.Search("liked:no", DefaultSearchOptions())))
	assert.Equal(t, []string{"t1", "t4"}, ids(ix.Search("playlist:gym", DefaultSearchOptions())))
	assert.Equal(t, []string{"t4"}, ids(ix.Search("playlist:gym genre:rock", DefaultSearchOptions())))
}

func TestIndex_UpdateIndexIdempotent(t *testing.T) {
	once := newTestIndex()
	twice := newTestIndex()
	twice.UpdateIndex(testTracks())

	opts := DefaultSearchOptions()
	opts.IncludeMatches = true
	for _, q := range []string{"robot", "daft", "rock", "genre:rock", "er year:1997"} {
		assert.Equal(t, once.Search(q, opts), twice.Search(q, opts), "query %q", q)
	}
	assert.Equal(t, once.Stats(), twice.Stats())
}

func TestIndex_UpdateIndexReplaces(t *testing.T) {
	ix := newTestIndex()
	ix.UpdateIndex(testTracks()[:1])

	assert.Equal(t, Stats{TrackCount: 1}, ix.Stats())
	assert.Empty(t, ix.Search("teardrop", DefaultSearchOptions()))
	assert.Equal(t, []string{"t1"}, ids(ix.Search("robot", DefaultSearchOptions())))
}

func TestIndex_AddTracks(t *testing.T) {
	all := testTracks()
	ix := New()

	ix.AddTracks([]library.Track{all[0], all[1], all[0]})
	assert.Equal(t, Stats{TrackCount: 2}, ix.Stats())

	ix.AddTracks([]library.Track{all[1], all[4]})
	assert.Equal(t, Stats{TrackCount: 3}, ix.Stats())

	seen := make(map[string]int)
	for _, tr := range ix.Tracks() {
		seen[tr.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "track %s", id)
	}

	results := ix.Search("teardrop", DefaultSearchOptions())
	require.NotEmpty(t, results)
	assert.Equal(t, "t5", results[0].Track.ID)
}

func TestIndex_QuickSearch(t *testing.T) {
	ix := newTestIndex()

	got := ix.QuickSearch("robot", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Empty(t, ix.QuickSearch(" ", 10))
}

func TestIndex_Suggestions(t *testing.T) {
	ix := newTestIndex()

	got := ix.Suggestions("da", 10)
	require.NotEmpty(t, got)
	assert.Contains(t, got, "Daft Punk")
	seen := make(map[string]bool)
	for _, s := range got {
		assert.Contains(t, strings.ToLower(s), "da")
		assert.False(t, seen[s], "duplicate suggestion %q", s)
		seen[s] = true
	}

	assert.Len(t, ix.Suggestions("da", 1), 1)
	assert.Nil(t, ix.Suggestions("d", 10))
	assert.Nil(t, ix.Suggestions("  d ", 10))
	assert.Contains(t, ix.Suggestions("window", 0), "Windowlicker")
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"true", "yes", "1", "y", ""} {
		assert.True(t, truthy(v), v)
	}
	for _, v := range []string{"false", "no", "0", "n", "off"} {
		assert.False(t, truthy(v), v)
	}
}
