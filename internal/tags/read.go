package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Raw tag keys that may carry a full release date, by container format.
var dateKeys = []string{
	"TDRC", // ID3v2.4
	"TDRL", // ID3v2.4 release time
	"date", // Vorbis comments (FLAC, Ogg)
	"DATE",
	"\xa9day", // MP4
}

var dateRe = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?`)

// Read reads tag metadata from a music file.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", filepath.Base(path), err)
	}

	title := m.Title()
	if title == "" {
		title = TitleFromPath(path)
	}

	track, _ := m.Track()
	disc, _ := m.Disc()

	albumArtist := m.AlbumArtist()
	if albumArtist == "" {
		albumArtist = m.Artist()
	}

	return &Tag{
		Path:        path,
		Title:       title,
		Artist:      m.Artist(),
		AlbumArtist: albumArtist,
		Album:       m.Album(),
		Genre:       m.Genre(),
		TrackNumber: track,
		DiscNumber:  disc,
		Date:        releaseDate(m.Raw(), m.Year()),
		Lyrics:      strings.TrimSpace(m.Lyrics()),
	}, nil
}

// TitleFromPath derives a display title from a file name.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// releaseDate prefers a full date from the raw frames and falls back to the
// parsed year.
func releaseDate(raw map[string]any, year int) string {
	for _, key := range dateKeys {
		v, ok := raw[key].(string)
		if !ok {
			continue
		}
		if d := dateRe.FindString(strings.TrimSpace(v)); d != "" {
			return d
		}
	}
	return yearToDate(year)
}

// yearToDate converts a year integer to a date string.
// Returns empty string for year 0.
func yearToDate(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
