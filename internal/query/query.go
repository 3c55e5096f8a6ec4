// Package query parses search strings into free text and structured filters.
//
// A query like `artist:"Daft Punk" year:2001 robot` yields the filters
// artist=Daft Punk and year=2001 with "robot" left as free text.
package query

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/llehouerou/wavesearch/internal/textutil"
)

// FilterType identifies the field a filter constrains.
type FilterType string

const (
	FilterArtist   FilterType = "artist"
	FilterAlbum    FilterType = "album"
	FilterGenre    FilterType = "genre"
	FilterYear     FilterType = "year"
	FilterLiked    FilterType = "liked"
	FilterPlaylist FilterType = "playlist"
)

// FilterTypes lists the recognized filter keys in canonical order.
var FilterTypes = []FilterType{
	FilterArtist, FilterAlbum, FilterGenre, FilterYear, FilterLiked, FilterPlaylist,
}

// Filter is a single key:value constraint. Filters in a query are ANDed.
type Filter struct {
	Type  FilterType
	Value string
}

// Parsed is a query split into free text and filters (in query order).
type Parsed struct {
	Text    string
	Filters []Filter
}

// HasFilters reports whether any filter was extracted.
func (p Parsed) HasFilters() bool {
	return len(p.Filters) > 0
}

// IsEmpty reports whether the query has neither text nor filters.
func (p Parsed) IsEmpty() bool {
	return p.Text == "" && len(p.Filters) == 0
}

// Matches key:value where the key starts a token. The value is either
// double-quoted, single-quoted, or runs to the next whitespace.
var filterRe = regexp.MustCompile(`(?:^|\s)((?i:artist|album|genre|year|liked|playlist)):(?:"([^"]*)"|'([^']*)'|(\S*))`)

// Parse splits raw into free text and filters. Unrecognized keys, empty
// values and unterminated quotes are left in the text untouched.
func Parse(raw string) Parsed {
	var p Parsed
	var text strings.Builder
	last := 0

	for _, m := range filterRe.FindAllStringSubmatchIndex(raw, -1) {
		keyStart, keyEnd := m[2], m[3]
		value, ok := filterValue(raw, m)
		if !ok {
			continue
		}
		text.WriteString(raw[last:keyStart])
		text.WriteByte(' ')
		last = m[1]

		p.Filters = append(p.Filters, Filter{
			Type:  FilterType(strings.ToLower(raw[keyStart:keyEnd])),
			Value: value,
		})
	}
	text.WriteString(raw[last:])

	p.Text = textutil.CollapseSpaces(text.String())
	return p
}

// filterValue extracts the value of a filter match, reporting false when the
// value is malformed.
func filterValue(raw string, m []int) (string, bool) {
	switch {
	case m[4] >= 0:
		v := raw[m[4]:m[5]]
		return v, v != ""
	case m[6] >= 0:
		v := raw[m[6]:m[7]]
		return v, v != ""
	case m[8] >= 0:
		v := raw[m[8]:m[9]]
		if v == "" || v[0] == '"' || v[0] == '\'' {
			return "", false
		}
		return v, true
	}
	return "", false
}

// HasNaturalLanguageFilters reports whether raw contains at least one
// recognized filter.
func HasNaturalLanguageFilters(raw string) bool {
	return Parse(raw).HasFilters()
}

// Build renders p back into a query string: filters first as key:value
// tokens, then the free text.
func Build(p Parsed) string {
	parts := make([]string, 0, len(p.Filters)+1)
	for _, f := range p.Filters {
		parts = append(parts, string(f.Type)+":"+quoteValue(f.Value))
	}
	if text := strings.TrimSpace(p.Text); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	needsQuotes := strings.ContainsFunc(v, unicode.IsSpace) ||
		strings.HasPrefix(v, `"`) || strings.HasPrefix(v, "'")
	if !needsQuotes {
		return v
	}
	if strings.Contains(v, `"`) {
		return "'" + v + "'"
	}
	return `"` + v + `"`
}
