// Package fuzzy implements typo-tolerant weighted multi-field matching.
//
// Each field is scored by approximate substring edit distance: the query may
// match anywhere in the field with insertions, deletions and substitutions,
// and the error count is normalized by the query length. Matches far from
// the start of a field are penalized slightly. A document's distance is the
// weighted product of the distances of its matching fields, so matching
// several fields (or matching a heavy field exactly) yields a lower distance.
package fuzzy

import (
	"math"
	"sort"
	"strings"

	"github.com/llehouerou/wavesearch/internal/textutil"
)

const (
	// DefaultCutoff is the maximum per-field distance counted as a match.
	DefaultCutoff = 0.6
	// DefaultLocationDistance scales the penalty for matches away from the
	// start of the field: a match starting at rune N adds N/distance.
	DefaultLocationDistance = 100

	epsilon = 2.220446049250313e-16
)

// Field is a single weighted searchable value of a document. Multi-valued
// attributes are expressed as several fields sharing a name.
type Field struct {
	Name   string
	Value  string
	Weight float64
}

// Document is a searchable item. Its position in the index is its Ref.
type Document struct {
	Fields []Field
}

// FieldMatch describes where the query matched within one field value.
// Ranges are inclusive [start, end] rune offsets into Value.
type FieldMatch struct {
	Field  string
	Value  string
	Ranges [][2]int
}

// Result is a matching document with its distance (0 = perfect, 1 = worst).
type Result struct {
	Ref      int
	Distance float64
	Matches  []FieldMatch
}

type indexedField struct {
	name      string
	value     string
	runes     []rune
	spans     [][2]int // value rune offsets of each normalized rune
	weight    float64
	fieldNorm float64
}

// Index holds precomputed normalized field values for a set of documents.
type Index struct {
	docs             [][]indexedField
	cutoff           float64
	locationDistance float64
}

// Option configures an Index.
type Option func(*Index)

// WithCutoff sets the maximum per-field distance counted as a match.
func WithCutoff(cutoff float64) Option {
	return func(ix *Index) {
		if cutoff > 0 && cutoff <= 1 {
			ix.cutoff = cutoff
		}
	}
}

// WithLocationDistance sets the location penalty scale. Zero disables it.
func WithLocationDistance(d float64) Option {
	return func(ix *Index) {
		if d >= 0 {
			ix.locationDistance = d
		}
	}
}

// New creates an empty index.
func New(opts ...Option) *Index {
	ix := &Index{
		cutoff:           DefaultCutoff,
		locationDistance: DefaultLocationDistance,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Add appends documents to the index. Their Refs continue from Len().
func (ix *Index) Add(docs ...Document) {
	for _, d := range docs {
		ix.docs = append(ix.docs, indexDocument(d))
	}
}

// Rebuild discards the current contents and indexes docs from scratch.
func (ix *Index) Rebuild(docs []Document) {
	ix.docs = make([][]indexedField, 0, len(docs))
	ix.Add(docs...)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

func indexDocument(d Document) []indexedField {
	fields := make([]indexedField, 0, len(d.Fields))
	for _, f := range d.Fields {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		normalized, spans := textutil.NormalizeRunes(f.Value)
		fields = append(fields, indexedField{
			name:      f.Name,
			value:     f.Value,
			runes:     normalized,
			spans:     spans,
			weight:    f.Weight,
			fieldNorm: fieldNorm(f.Value),
		})
	}
	return fields
}

// fieldNorm dampens matches in long values: 1/sqrt(word count), rounded to
// three decimals.
func fieldNorm(value string) float64 {
	n := len(strings.Fields(value))
	if n == 0 {
		n = 1
	}
	return math.Round(1/math.Sqrt(float64(n))*1000) / 1000
}

// Query returns documents matching text sorted by ascending distance, ties
// in index order. maxResults <= 0 means no cap.
func (ix *Index) Query(text string, maxResults int) []Result {
	pattern, _ := textutil.NormalizeRunes(strings.TrimSpace(text))
	if len(pattern) == 0 {
		return nil
	}

	var results []Result
	for ref, fields := range ix.docs {
		if r, ok := ix.scoreDocument(ref, fields, pattern); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func (ix *Index) scoreDocument(ref int, fields []indexedField, pattern []rune) (Result, bool) {
	total := 1.0
	matched := false
	var matches []FieldMatch

	for i := range fields {
		f := &fields[i]
		d, ranges, ok := ix.matchField(pattern, f.runes)
		if !ok {
			continue
		}
		matched = true

		if d == 0 && f.weight > 0 {
			d = epsilon
		}
		weight := f.weight
		if weight <= 0 {
			weight = 1
		}
		total *= math.Pow(d, weight*f.fieldNorm)

		matches = append(matches, FieldMatch{
			Field:  f.name,
			Value:  f.value,
			Ranges: valueRanges(ranges, f.spans),
		})
	}

	if !matched {
		return Result{}, false
	}
	return Result{Ref: ref, Distance: total, Matches: matches}, true
}

// matchField returns the distance of the best approximate occurrence of
// pattern in text along with the ranges of text runes that matched exactly.
func (ix *Index) matchField(pattern, text []rune) (float64, [][2]int, bool) {
	a := align(pattern, text, ix.locationDistance)
	if a.end < 0 {
		return 0, nil, false
	}

	d := float64(a.errors) / float64(len(pattern))
	if ix.locationDistance > 0 {
		d += float64(a.start) / ix.locationDistance
	}
	d = math.Min(d, 1)
	if d > ix.cutoff {
		return 0, nil, false
	}
	return d, a.ranges, true
}

// valueRanges maps ranges over normalized runes back to rune offsets in the
// original value.
func valueRanges(ranges, spans [][2]int) [][2]int {
	out := make([][2]int, 0, len(ranges))
	for _, r := range ranges {
		if r[0] < 0 || r[0] > r[1] || r[1] >= len(spans) {
			continue
		}
		out = append(out, [2]int{spans[r[0]][0], spans[r[1]][1]})
	}
	return out
}
