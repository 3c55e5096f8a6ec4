package fuzzy

import "math"

// Alignment operations, in tie-break preference order.
const (
	opDiag uint8 = iota // match or substitution
	opUp                // pattern rune missing from text
	opLeft              // extra text rune inside the occurrence
)

// alignment is the best approximate occurrence of a pattern in a text.
// end is -1 when nothing aligned with fewer errors than the pattern length.
type alignment struct {
	start  int
	end    int
	errors int
	ranges [][2]int
}

// align finds the occurrence of pattern in text minimizing
// errors/len(pattern) + start/locationDistance (Sellers' algorithm: free
// leading and trailing text, unit edit costs), then traces back the
// occurrence to collect runs of exactly matching text runes.
func align(pattern, text []rune, locationDistance float64) alignment {
	m, n := len(pattern), len(text)
	if m == 0 || n == 0 {
		return alignment{end: -1}
	}

	width := n + 1
	cost := make([]int, (m+1)*width)
	op := make([]uint8, (m+1)*width)
	start := make([]int, (m+1)*width)

	for j := 0; j <= n; j++ {
		start[j] = j
	}
	for i := 1; i <= m; i++ {
		row, prev := i*width, (i-1)*width
		cost[row] = i
		op[row] = opUp

		for j := 1; j <= n; j++ {
			sub := 1
			if pattern[i-1] == text[j-1] {
				sub = 0
			}

			best, o, s := cost[prev+j-1]+sub, opDiag, start[prev+j-1]
			if c := cost[prev+j] + 1; c < best {
				best, o, s = c, opUp, start[prev+j]
			}
			if c := cost[row+j-1] + 1; c < best {
				best, o, s = c, opLeft, start[row+j-1]
			}

			cost[row+j] = best
			op[row+j] = o
			start[row+j] = s
		}
	}

	last := m * width
	bestEnd := -1
	bestScore := math.Inf(1)
	for j := 1; j <= n; j++ {
		k := cost[last+j]
		if k >= m {
			continue
		}
		score := float64(k) / float64(m)
		if locationDistance > 0 {
			score += float64(start[last+j]) / locationDistance
		}
		if score < bestScore {
			bestScore, bestEnd = score, j
		}
	}
	if bestEnd < 0 {
		return alignment{end: -1}
	}

	var matched []int
	for i, j := m, bestEnd; i > 0; {
		switch op[i*width+j] {
		case opDiag:
			if pattern[i-1] == text[j-1] {
				matched = append(matched, j-1)
			}
			i--
			j--
		case opUp:
			i--
		case opLeft:
			j--
		}
	}

	return alignment{
		start:  start[last+bestEnd],
		end:    bestEnd - 1,
		errors: cost[last+bestEnd],
		ranges: toRanges(matched),
	}
}

// toRanges groups descending rune offsets into ascending inclusive runs.
func toRanges(desc []int) [][2]int {
	var ranges [][2]int
	for k := len(desc) - 1; k >= 0; k-- {
		idx := desc[k]
		if n := len(ranges); n > 0 && ranges[n-1][1] == idx-1 {
			ranges[n-1][1] = idx
			continue
		}
		ranges = append(ranges, [2]int{idx, idx})
	}
	return ranges
}
