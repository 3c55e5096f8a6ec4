package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavesearch/internal/library"
	"github.com/llehouerou/wavesearch/internal/lyrics"
	"github.com/llehouerou/wavesearch/internal/search"
	"github.com/llehouerou/wavesearch/internal/state"
)

// Highlight renders value with the inclusive rune ranges styled by hl and
// the rest by base. Out-of-bounds ranges are clipped.
func Highlight(value string, ranges [][2]int, base, hl lipgloss.Style) string {
	runes := []rune(value)
	marked := make([]bool, len(runes))
	for _, r := range ranges {
		for i := max(r[0], 0); i <= r[1] && i < len(runes); i++ {
			marked[i] = true
		}
	}

	var b strings.Builder
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && marked[i] == marked[start] {
			continue
		}
		style := base
		if marked[start] {
			style = hl
		}
		b.WriteString(style.Render(string(runes[start:i])))
		start = i
	}
	return b.String()
}

// fieldValue returns the rendered value of field for t, highlighting the
// matched ranges when matches cover it.
func fieldValue(field, value string, matches []search.MatchInfo, base lipgloss.Style) string {
	s := T().S()
	for _, m := range matches {
		if m.Field == field && m.Value == value {
			return Highlight(value, m.Ranges, base, s.Highlight)
		}
	}
	return base.Render(value)
}

// Track writes one track search result.
func Track(w io.Writer, i int, r search.Result, showScore bool) {
	s := T().S()
	t := r.Track

	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, fieldValue(search.FieldArtist, a.Name, r.Matches, s.Muted))
	}

	line := fmt.Sprintf("%3d. %s", i+1, fieldValue(search.FieldTitle, t.Title, r.Matches, s.Title))
	if len(artists) > 0 {
		line += s.Muted.Render(" - ") + strings.Join(artists, s.Muted.Render(", "))
	}
	if album := t.AlbumTitle(); album != "" {
		line += s.Subtle.Render(" [") + fieldValue(search.FieldAlbum, album, r.Matches, s.Subtle)
		if year := t.Year(); year != "" {
			line += s.Subtle.Render(", " + year)
		}
		line += s.Subtle.Render("]")
	}
	if showScore {
		line += " " + s.Score.Render(fmt.Sprintf("(%.2f)", r.Score))
	}
	fmt.Fprintln(w, line)
}

// Tracks writes track search results, or a notice when there are none.
func Tracks(w io.Writer, results []search.Result, showScore bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, T().S().Muted.Render("No tracks found"))
		return
	}
	for i, r := range results {
		Track(w, i, r, showScore)
	}
}

// LyricsResults writes lyrics search results with their context lines,
// highlighting the matched line.
func LyricsResults(w io.Writer, results []lyrics.SearchResult, showScore bool) {
	s := T().S()
	if len(results) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No lyrics found"))
		return
	}
	for i, r := range results {
		header := fmt.Sprintf("%3d. %s", i+1, s.Title.Render(r.Title))
		if r.Artist != "" {
			header += s.Muted.Render(" - " + r.Artist)
		}
		header += s.Subtle.Render(fmt.Sprintf(" (line %d)", r.LineIndex+1))
		if showScore {
			header += " " + s.Score.Render(fmt.Sprintf("(%.2f)", r.Score))
		}
		fmt.Fprintln(w, header)
		for _, c := range r.Context {
			if c == r.MatchedLine {
				fmt.Fprintln(w, "     "+s.Highlight.Render(c))
				continue
			}
			fmt.Fprintln(w, "     "+s.Subtle.Render(c))
		}
	}
}

// Suggestions writes one suggestion per line.
func Suggestions(w io.Writer, suggestions []string) {
	for _, sg := range suggestions {
		fmt.Fprintln(w, sg)
	}
}

// ScanSummary writes the outcome of a library refresh.
func ScanSummary(w io.Writer, files, fallback, tracks, lyricsFound, lyricsRemoved int, took time.Duration) {
	s := T().S()
	fmt.Fprintln(w, s.Success.Render(fmt.Sprintf("Indexed %s tracks in %s",
		humanize.Comma(int64(tracks)), took.Round(time.Millisecond))))
	fmt.Fprintf(w, "  files:          %s\n", humanize.Comma(int64(files)))
	if fallback > 0 {
		fmt.Fprintln(w, s.Warning.Render(fmt.Sprintf("  untagged:       %s", humanize.Comma(int64(fallback)))))
	}
	fmt.Fprintf(w, "  with lyrics:    %s\n", humanize.Comma(int64(lyricsFound)))
	if lyricsRemoved > 0 {
		fmt.Fprintf(w, "  lyrics removed: %s\n", humanize.Comma(int64(lyricsRemoved)))
	}
}

// Stats writes index sizes and stored entries.
func Stats(w io.Writer, tracks search.Stats, cached lyrics.CacheStats, entries []state.Entry) {
	s := T().S()
	fmt.Fprintln(w, s.Title.Render("Index"))
	fmt.Fprintf(w, "  tracks:        %s\n", humanize.Comma(int64(tracks.TrackCount)))
	fmt.Fprintf(w, "  lyrics tracks: %s\n", humanize.Comma(int64(cached.CachedTracks)))
	fmt.Fprintf(w, "  lyrics words:  %s\n", humanize.Comma(int64(cached.IndexedWords)))

	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(w, s.Title.Render("Stored state"))
	for _, e := range entries {
		updated := "never"
		if !e.UpdatedAt.IsZero() {
			updated = humanize.Time(e.UpdatedAt)
		}
		fmt.Fprintf(w, "  %-16s %10s  %s\n", e.Name, humanize.Bytes(uint64(max(e.Size, 0))), s.Muted.Render(updated))
	}
}

// TrackPath writes the file path of a track, for piping into other tools.
func TrackPath(w io.Writer, t library.Track) {
	fmt.Fprintln(w, t.Path)
}
