// Package similarity implements the pure token-sequence comparison
// functions the matcher builds on: parsing, n-gram overlap, plain and
// banded LCS, and the combined cross-revision similarity rule. The
// banded-LCS early-termination technique is grounded on the two-row
// space-optimized edit-distance DP used for textual similarity in the
// example corpus, applied here to LCS instead of Levenshtein distance.
package similarity

import (
	"fmt"

	"github.com/clonetrace/clonetrace/pkg/models"
)

// Parse decodes the textual form "[t1;t2;...]" into an ordered integer
// token sequence. Empty sequences are permitted.
func Parse(s string) ([]int, error) {
	tokens, err := models.ParseTokenSequence(s)
	if err != nil {
		return nil, fmt.Errorf("parse token sequence: %w", err)
	}
	return tokens, nil
}

// ngramMultiset builds the multiset (bag) of contiguous n-grams of tokens,
// represented as counts keyed by a packed string of the n-gram. The
// multiset variant is the documented choice for this engine (see
// SPEC_FULL.md §5.1): it penalizes fragments that differ only in how many
// times a repeated substructure occurs, which a set-based n-gram
// comparison would not detect.
func ngramMultiset(tokens []int, n int) map[string]int {
	if len(tokens) < n {
		if len(tokens) == 0 {
			return map[string]int{}
		}
		// Sequences shorter than n contribute a single gram of their
		// full length, so short fragments are still comparable.
		n = len(tokens)
	}
	counts := make(map[string]int, len(tokens))
	buf := make([]byte, 0, n*8)
	for i := 0; i+n <= len(tokens); i++ {
		buf = buf[:0]
		for j := 0; j < n; j++ {
			buf = appendInt(buf, tokens[i+j])
			buf = append(buf, ',')
		}
		counts[string(buf)]++
	}
	return counts
}

func appendInt(buf []byte, v int) []byte {
	if v < 0 {
		buf = append(buf, '-')
		v = -v
	}
	start := len(buf)
	if v == 0 {
		return append(buf, '0')
	}
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// Ngram returns round(100 * 2*|A∩B| / (|A|+|B|)) over the multisets of
// contiguous n-grams of a and b, using the Sørensen-Dice overlap formula
// named in the spec. Defined to be 0 when both inputs contribute no
// n-grams.
func Ngram(a, b []int, n int) int {
	if n <= 0 {
		n = 2
	}
	ca := ngramMultiset(a, n)
	cb := ngramMultiset(b, n)
	total := 0
	for _, c := range ca {
		total += c
	}
	for _, c := range cb {
		total += c
	}
	if total == 0 {
		return 0
	}
	intersection := 0
	for gram, c := range ca {
		if d, ok := cb[gram]; ok {
			if c < d {
				intersection += c
			} else {
				intersection += d
			}
		}
	}
	return roundPercent(2 * intersection, total)
}

func roundPercent(num, den int) int {
	if den == 0 {
		return 0
	}
	// round-half-up on 100*num/den
	return (100*num*2 + den) / (2 * den)
}

// LCS returns round(100 * 2*len(LCS(a,b)) / (len(a)+len(b))), computed by
// exact O(len(a)*len(b)) dynamic programming with two-row space
// optimization. Defined to be 100 for two empty sequences.
func LCS(a, b []int) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	length := lcsLength(a, b, -1, -1)
	return roundPercent(2*length, len(a)+len(b))
}

// lcsLength computes the LCS length of a and b. If maxBand >= 0, the DP is
// restricted to a diagonal band of that half-width (entries outside the
// band are treated as unreachable); if bailoutFloor >= 0, the function
// returns early with -1 once the best achievable LCS length can no longer
// reach bailoutFloor.
func lcsLength(a, b []int, maxBand, bailoutFloor int) int {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	// Ensure a is the shorter sequence; the band is centered on the
	// shorter axis.
	if len(a) > len(b) {
		a, b = b, a
	}
	m, n := len(a), len(b)
	prev := make([]int, m+1)
	curr := make([]int, m+1)

	for j := 1; j <= n; j++ {
		lo, hi := 0, m
		if maxBand >= 0 {
			center := j * m / maxIntArg(n, 1)
			lo = maxIntArg(0, center-maxBand)
			hi = minIntArg(m, center+maxBand)
		}
		curr[0] = 0
		for i := 1; i <= m; i++ {
			if maxBand >= 0 && (i < lo || i > hi) {
				curr[i] = curr[i-1]
				continue
			}
			if a[i-1] == b[j-1] {
				curr[i] = prev[i-1] + 1
			} else if prev[i] >= curr[i-1] {
				curr[i] = prev[i]
			} else {
				curr[i] = curr[i-1]
			}
		}
		if bailoutFloor >= 0 {
			remaining := n - j
			upperBound := curr[m] + minIntArg(m, remaining)
			if roundPercent(2*upperBound, len(a)+len(b)) < bailoutFloor {
				return -1
			}
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

func maxIntArg(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minIntArg(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// LCSBanded computes LCS similarity restricted to a diagonal band of the
// given width, with early termination once the achievable similarity can
// no longer reach threshold. It returns (similarity, true) when the exact
// similarity is known to be >= threshold (within a 1-unit rounding
// tolerance), or (0, false) when the exact similarity is known to be
// below threshold. bandWidth <= 0 selects the default,
// max(10, floor(len(shorter)*0.3)).
func LCSBanded(a, b []int, threshold, bandWidth int) (int, bool) {
	if bandWidth <= 0 {
		shorter := len(a)
		if len(b) < shorter {
			shorter = len(b)
		}
		bandWidth = maxIntArg(10, shorter*3/10)
	}
	length := lcsLength(a, b, bandWidth, threshold)
	if length < 0 {
		return 0, false
	}
	sim := roundPercent(2*length, len(a)+len(b))
	if sim < threshold {
		return 0, false
	}
	return sim, true
}

// Combined is the canonical cross-revision similarity: Ngram(a,b) when it
// already clears threshold, otherwise the LCS value (banded when useBanded
// is set). When the banded path reports "below threshold" the returned
// value is threshold-1, signalling rejection without claiming an exact
// score.
func Combined(a, b []int, threshold int, useBanded bool) int {
	ng := Ngram(a, b, 2)
	if ng >= threshold {
		return ng
	}
	if useBanded {
		sim, ok := LCSBanded(a, b, threshold, 0)
		if !ok {
			return threshold - 1
		}
		return sim
	}
	return LCS(a, b)
}
