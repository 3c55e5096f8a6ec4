package search

import (
	"strings"
)

// Suggestions completes partial from the titles, artist names and album
// titles of matching tracks. Only strings containing partial
// (case-insensitively) are suggested, each once, in match order. Partials
// shorter than two characters yield nothing. limit <= 0 uses
// DefaultSuggestions.
func (ix *Index) Suggestions(partial string, limit int) []string {
	partial = strings.TrimSpace(partial)
	if len([]rune(partial)) < minSuggestionLength {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	needle := strings.ToLower(partial)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []string
	seen := make(map[string]struct{})
	add := func(s string) bool {
		if s == "" || !strings.Contains(strings.ToLower(s), needle) {
			return false
		}
		if _, ok := seen[s]; ok {
			return false
		}
		seen[s] = struct{}{}
		out = append(out, s)
		return len(out) == limit
	}

	for _, fr := range ix.fuzzy.Query(partial, 0) {
		t := ix.tracks[fr.Ref]
		if add(t.Title) {
			return out
		}
		for _, a := range t.Artists {
			if add(a.Name) {
				return out
			}
		}
		if add(t.AlbumTitle()) {
			return out
		}
	}
	return out
}
