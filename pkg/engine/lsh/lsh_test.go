package lsh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureDeterministic(t *testing.T) {
	h1 := NewMinHasher(64)
	h2 := NewMinHasher(64)
	tokens := []int{1, 2, 3, 4, 5}
	assert.Equal(t, h1.Signature(tokens), h2.Signature(tokens))
}

func TestSignatureEmptyTokens(t *testing.T) {
	h := NewMinHasher(32)
	sig := h.Signature(nil)
	for _, v := range sig {
		assert.Equal(t, uint64(math.MaxUint64), v)
	}
}

func TestEstimateJaccardIdentical(t *testing.T) {
	h := NewMinHasher(128)
	sig := h.Signature([]int{1, 2, 3, 4, 5})
	assert.Equal(t, 1.0, EstimateJaccard(sig, sig))
}

func TestEstimateJaccardDisjointLow(t *testing.T) {
	h := NewMinHasher(128)
	a := h.Signature([]int{1, 2, 3})
	b := h.Signature([]int{100, 200, 300})
	assert.Less(t, EstimateJaccard(a, b), 0.5)
}

func TestDeriveBandRowsDivides(t *testing.T) {
	bands, rows := DeriveBandRows(128, 0.7)
	assert.Equal(t, 128, bands*rows)
	assert.Greater(t, bands, 0)
	assert.Greater(t, rows, 0)
}

func TestIndexInsertAndQueryFindsNearDuplicate(t *testing.T) {
	idx := NewIndex(Config{NumPermutations: 128, JaccardThreshold: 0.5})
	base := make([]int, 100)
	for i := range base {
		base[i] = i
	}
	near := append([]int{}, base...)
	near[0] = 9999 // one token different out of 100

	far := []int{1000, 1001, 1002}

	idx.Insert("base", base)
	idx.Insert("far", far)

	candidates := idx.Query(near)
	require.NotEmpty(t, candidates)
	assert.Contains(t, candidates, "base")
	assert.NotContains(t, candidates, "far")
}

func TestIndexQueryEmptyTokens(t *testing.T) {
	idx := NewIndex(Config{NumPermutations: 64, JaccardThreshold: 0.5})
	idx.Insert("a", []int{1, 2, 3})
	assert.Empty(t, idx.Query(nil))
}

func TestFalseNegativeRateDecreasesWithSimilarity(t *testing.T) {
	bands, rows := 16, 8
	low := EstimateFalseNegativeRate(0.3, bands, rows)
	high := EstimateFalseNegativeRate(0.9, bands, rows)
	assert.Greater(t, low, high)
}
