package lyrics

import (
	"strings"
	"time"
)

// CachedLyrics is the cached lyrics of one track: either time-coded lines or
// plain text.
type CachedLyrics struct {
	TrackID     string
	Title       string
	Artist      string
	Lines       []Line
	PlainLyrics *string
	CachedAt    time.Time
}

// IndexLines returns the texts the index addresses by line number: the
// time-coded lines, or the plain text split on newlines when there are none.
func (c CachedLyrics) IndexLines() []string {
	if len(c.Lines) > 0 {
		texts := make([]string, len(c.Lines))
		for i, l := range c.Lines {
			texts[i] = l.Text
		}
		return texts
	}
	if c.PlainLyrics == nil || *c.PlainLyrics == "" {
		return nil
	}
	return strings.Split(*c.PlainLyrics, "\n")
}

// FromLyrics converts parsed lyrics into a cache entry. Synced lyrics keep
// their time-coded lines; unsynced lyrics are stored as plain text.
func FromLyrics(trackID, title, artist string, l *Lyrics, cachedAt time.Time) CachedLyrics {
	c := CachedLyrics{
		TrackID:  trackID,
		Title:    title,
		Artist:   artist,
		CachedAt: cachedAt,
	}
	if c.Title == "" {
		c.Title = l.Title
	}
	if c.Artist == "" {
		c.Artist = l.Artist
	}

	if l.IsSynced() {
		c.Lines = append([]Line(nil), l.Lines...)
		return c
	}
	text := l.Text()
	c.PlainLyrics = &text
	return c
}
