// Package library holds the track records fed to the search indices and
// loads them from music folders on disk.
package library

import (
	"crypto/sha1" //nolint:gosec // identifiers only, not security sensitive
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Artist is a credited performer of a track.
type Artist struct {
	Name string `json:"name"`
}

// Album is the release a track belongs to.
type Album struct {
	Title string `json:"title"`
	// ReleaseDate is "YYYY", "YYYY-MM" or "YYYY-MM-DD...".
	ReleaseDate string `json:"releaseDate,omitempty"`
}

// Track is a library record. The search indices never mutate tracks.
type Track struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artists []Artist `json:"artists"`
	Album   *Album   `json:"album,omitempty"`
	Genre   string   `json:"genre,omitempty"`
	Path    string   `json:"path,omitempty"`
}

// ArtistNames returns the names of the track's artists in credit order.
func (t Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// ArtistLine joins artist names for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.ArtistNames(), ", ")
}

// AlbumTitle returns the album title or "" when the track has no album.
func (t Track) AlbumTitle() string {
	if t.Album == nil {
		return ""
	}
	return t.Album.Title
}

// ReleaseDate returns the album release date or "" when unknown.
func (t Track) ReleaseDate() string {
	if t.Album == nil {
		return ""
	}
	return t.Album.ReleaseDate
}

// Year returns the first four characters of the release date, or "" when
// the date is shorter than that.
func (t Track) Year() string {
	d := t.ReleaseDate()
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

// TrackID derives a stable identifier from a file path.
func TrackID(path string) string {
	sum := sha1.Sum([]byte(filepath.Clean(path))) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// Separators used to split multi-artist credits.
var artistSeparators = []string{";", " / ", " feat. ", " feat ", " ft. ", " featuring "}

// SplitArtists splits a credit string like "A feat. B; C" into artists.
// "&" and "," are kept since they commonly appear inside band names.
func SplitArtists(credit string) []Artist {
	parts := []string{credit}
	for _, sep := range artistSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, splitFold(p, sep)...)
		}
		parts = next
	}

	var artists []Artist
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		artists = append(artists, Artist{Name: name})
	}
	return artists
}

// splitFold splits s around case-insensitive occurrences of sep.
func splitFold(s, sep string) []string {
	lower := strings.ToLower(s)
	if len(lower) != len(s) {
		return strings.Split(s, sep)
	}
	var parts []string
	for {
		idx := strings.Index(lower, sep)
		if idx < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:idx])
		s = s[idx+len(sep):]
		lower = lower[idx+len(sep):]
	}
}
