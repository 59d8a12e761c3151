package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tokens, err := Parse("[1;2;3]")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, tokens)
}

func TestParseEmpty(t *testing.T) {
	tokens, err := Parse("[]")
	require.NoError(t, err)
	assert.Equal(t, []int{}, tokens)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("1;2;3")
	assert.Error(t, err)
	_, err = Parse("[1;x;3]")
	assert.Error(t, err)
}

func TestNgramIdentical(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	assert.Equal(t, 100, Ngram(a, a, 2))
}

func TestNgramEmptyBoth(t *testing.T) {
	assert.Equal(t, 0, Ngram(nil, nil, 2))
}

func TestNgramPenalizesRepeatedSubstructure(t *testing.T) {
	// b repeats the [4,5] bigram an extra time relative to a; the
	// multiset variant scores this 80, lower than the 89 a set-based
	// comparison would give (which counts the repeated [4,5] only once).
	a := []int{1, 2, 3, 4, 5}
	b := []int{1, 2, 3, 4, 5, 4, 5}
	sim := Ngram(a, b, 2)
	assert.Less(t, sim, 100)
	assert.Greater(t, sim, 0)
}

func TestLCSEmptyBothIsHundred(t *testing.T) {
	assert.Equal(t, 100, LCS(nil, nil))
}

func TestLCSIdentical(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	assert.Equal(t, 100, LCS(a, a))
}

func TestLCSPartialOverlap(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	b := []int{1, 2, 3, 9, 9}
	sim := LCS(a, b)
	assert.Greater(t, sim, 0)
	assert.Less(t, sim, 100)
}

func TestLCSBandedAgreesWithExactAboveThreshold(t *testing.T) {
	a := make([]int, 50)
	b := make([]int, 50)
	for i := range a {
		a[i] = i
		b[i] = i
	}
	b[49] = -1 // single trailing difference, still highly similar

	exact := LCS(a, b)
	banded, ok := LCSBanded(a, b, 70, 0)
	require.True(t, ok)
	assert.InDelta(t, exact, banded, 1)
}

func TestLCSBandedRejectsBelowThreshold(t *testing.T) {
	a := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	b := []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	_, ok := LCSBanded(a, b, 70, 0)
	assert.False(t, ok)
}

func TestCombinedPrefersNgramWhenAboveThreshold(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	assert.Equal(t, 100, Combined(a, a, 70, false))
}

func TestCombinedFallsBackToLCS(t *testing.T) {
	a := []int{1, 2, 3, 4, 5, 6, 7, 8}
	b := []int{8, 7, 6, 5, 4, 3, 2, 1} // same multiset, different order
	sim := Combined(a, b, 70, false)
	assert.GreaterOrEqual(t, sim, 0)
}
