package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		text     string
		expected []Filter
	}{
		{
			name:     "quoted artist with free text",
			input:    `artist:"Daft Punk" robot love`,
			text:     "robot love",
			expected: []Filter{{Type: FilterArtist, Value: "Daft Punk"}},
		},
		{
			name:     "single quoted value",
			input:    `album:'Random Access Memories'`,
			text:     "",
			expected: []Filter{{Type: FilterAlbum, Value: "Random Access Memories"}},
		},
		{
			name:  "multiple filters in the middle",
			input: "get genre:electronic lucky   year:2013  now",
			text:  "get lucky now",
			expected: []Filter{
				{Type: FilterGenre, Value: "electronic"},
				{Type: FilterYear, Value: "2013"},
			},
		},
		{
			name:     "key is case-insensitive",
			input:    "GENRE:rock",
			text:     "",
			expected: []Filter{{Type: FilterGenre, Value: "rock"}},
		},
		{
			name:     "liked and playlist",
			input:    "liked:true playlist:favorites",
			text:     "",
			expected: []Filter{{Type: FilterLiked, Value: "true"}, {Type: FilterPlaylist, Value: "favorites"}},
		},
		{
			name:  "unrecognized key left untouched",
			input: "mood:happy label:warp",
			text:  "mood:happy label:warp",
		},
		{
			name:  "empty value degrades to text",
			input: "artist: daft",
			text:  "artist: daft",
		},
		{
			name:  "empty quoted value degrades to text",
			input: `artist:"" daft`,
			text:  `artist:"" daft`,
		},
		{
			name:  "unterminated quote degrades to text",
			input: `artist:"Daft punk`,
			text:  `artist:"Daft punk`,
		},
		{
			name:  "key must start a token",
			input: "myartist:foo",
			text:  "myartist:foo",
		},
		{
			name:  "plain text",
			input: "  hello   world ",
			text:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			text:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.input)
			assert.Equal(t, tt.text, p.Text)
			assert.Equal(t, tt.expected, p.Filters)
		})
	}
}

func TestHasNaturalLanguageFilters(t *testing.T) {
	assert.True(t, HasNaturalLanguageFilters("year:1999"))
	assert.True(t, HasNaturalLanguageFilters(`foo artist:"Air"`))
	assert.False(t, HasNaturalLanguageFilters("foo bar"))
	assert.False(t, HasNaturalLanguageFilters("artist:"))
}

func TestBuild(t *testing.T) {
	p := Parsed{
		Text: "robot love",
		Filters: []Filter{
			{Type: FilterArtist, Value: "Daft Punk"},
			{Type: FilterYear, Value: "2001"},
		},
	}
	assert.Equal(t, `artist:"Daft Punk" year:2001 robot love`, Build(p))
	assert.Empty(t, Build(Parsed{}))
	assert.Equal(t, `album:'The "Blue" Album'`, Build(Parsed{
		Filters: []Filter{{Type: FilterAlbum, Value: `The "Blue" Album`}},
	}))
}

func TestBuildParseRoundTrip(t *testing.T) {
	cases := []Parsed{
		{Text: "robot love", Filters: []Filter{{Type: FilterArtist, Value: "Daft Punk"}}},
		{Text: "", Filters: []Filter{{Type: FilterGenre, Value: "rock"}, {Type: FilterYear, Value: "1999"}}},
		{Text: "only text"},
		{Filters: []Filter{{Type: FilterAlbum, Value: `The "Blue" Album`}}},
		{Filters: []Filter{{Type: FilterPlaylist, Value: "'quoted"}}},
		{Text: "a b", Filters: []Filter{{Type: FilterLiked, Value: "yes"}, {Type: FilterArtist, Value: "Sigur Rós"}}},
	}

	for _, want := range cases {
		t.Run(Build(want), func(t *testing.T) {
			got := Parse(Build(want))
			require.Equal(t, want.Text, got.Text)
			assert.Equal(t, want.Filters, got.Filters)
		})
	}
}

func TestParsedHelpers(t *testing.T) {
	assert.True(t, Parsed{}.IsEmpty())
	assert.False(t, Parsed{Text: "x"}.IsEmpty())
	assert.True(t, Parsed{Filters: []Filter{{Type: FilterYear, Value: "2000"}}}.HasFilters())
}
