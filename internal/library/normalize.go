package library

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/llehouerou/wavesearch/internal/textutil"
)

var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// NormalizeTitle normalizes a title for comparison by:
// - Converting to lowercase and removing diacritics
// - Replacing punctuation with spaces
// - Normalizing whitespace
func NormalizeTitle(s string) string {
	s = textutil.Normalize(s)
	s = punctuationRe.ReplaceAllString(s, " ")
	return textutil.CollapseSpaces(s)
}

// LyricsKey identifies a song across naming variations, for matching lyrics
// files named "Artist - Title.lrc" to tracks.
func LyricsKey(artist, title string) string {
	return NormalizeTitle(artist) + " - " + NormalizeTitle(title)
}

// LyricsKeyFromFile derives a LyricsKey from a "Artist - Title.ext" file
// name. ok is false when the name has no " - " separator.
func LyricsKeyFromFile(path string) (key string, ok bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	artist, title, found := strings.Cut(base, " - ")
	if !found {
		return "", false
	}
	return LyricsKey(artist, title), true
}
