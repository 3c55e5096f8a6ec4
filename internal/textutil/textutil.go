// Package textutil provides the text normalization and tokenization shared by
// the track and lyrics indices.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	multipleSpaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s and folds diacritics, so "Café" matches "cafe".
func Normalize(s string) string {
	return strings.ToLower(RemoveDiacritics(s))
}

// RemoveDiacritics removes accents from characters.
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeRunes normalizes s rune by rune like Normalize and reports, for
// each output rune, the inclusive span of input rune offsets it came from.
// Input runes that fold to nothing (combining marks) extend the span of the
// preceding output rune.
func NormalizeRunes(s string) ([]rune, [][2]int) {
	in := []rune(s)
	out := make([]rune, 0, len(in))
	spans := make([][2]int, 0, len(in))
	var fold transform.Transformer

	for i, r := range in {
		if r < utf8.RuneSelf {
			out = append(out, unicode.ToLower(r))
			spans = append(spans, [2]int{i, i})
			continue
		}

		if fold == nil {
			fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		}
		folded, _, err := transform.String(fold, string(r))
		if err != nil {
			folded = string(r)
		}
		if folded == "" {
			if len(spans) > 0 {
				spans[len(spans)-1][1] = i
			}
			continue
		}
		for _, fr := range strings.ToLower(folded) {
			out = append(out, fr)
			spans = append(spans, [2]int{i, i})
		}
	}
	return out, spans
}

// CollapseSpaces trims s and collapses inner whitespace runs to one space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(multipleSpaceRe.ReplaceAllString(s, " "))
}

// Tokenize splits text into normalized words: lowercased, punctuation
// replaced by whitespace, words of one rune or less dropped.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	s = punctuationRe.ReplaceAllString(s, " ")
	fields := strings.Fields(s)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			words = append(words, f)
		}
	}
	return words
}

// ContainsEither reports whether a contains b or b contains a.
func ContainsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
