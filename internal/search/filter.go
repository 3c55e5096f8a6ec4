package search

import (
	"strings"

	"github.com/llehouerou/wavesearch/internal/library"
	"github.com/llehouerou/wavesearch/internal/query"
)

// matchesAll reports whether t satisfies every filter.
func (ix *Index) matchesAll(t library.Track, filters []query.Filter) bool {
	for _, f := range filters {
		if !ix.matches(t, f) {
			return false
		}
	}
	return true
}

func (ix *Index) matches(t library.Track, f query.Filter) bool {
	value := strings.ToLower(f.Value)
	switch f.Type {
	case query.FilterArtist:
		for _, a := range t.Artists {
			if strings.Contains(strings.ToLower(a.Name), value) {
				return true
			}
		}
		return false
	case query.FilterAlbum:
		return t.Album != nil && strings.Contains(strings.ToLower(t.Album.Title), value)
	case query.FilterGenre:
		return t.Genre != "" && strings.Contains(strings.ToLower(t.Genre), value)
	case query.FilterYear:
		return t.Year() != "" && t.Year() == f.Value
	case query.FilterLiked:
		if ix.membership == nil {
			return true
		}
		return ix.membership.IsLiked(t.ID) == truthy(value)
	case query.FilterPlaylist:
		if ix.membership == nil {
			return true
		}
		return ix.membership.InPlaylist(t.ID, f.Value)
	}
	return true
}

// truthy interprets a liked: value. Anything but an explicit negative
// means liked.
func truthy(v string) bool {
	switch v {
	case "false", "no", "0", "n", "off":
		return false
	}
	return true
}
