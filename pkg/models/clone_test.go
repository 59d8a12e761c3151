package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestEffectiveSimilarityUsesNgramWhenAboveShortcut(t *testing.T) {
	p := ClonePair{NgramSimilarity: 85, LcsSimilarity: intPtr(40)}
	assert.Equal(t, 85, p.EffectiveSimilarity())
}

func TestEffectiveSimilarityFallsBackToLCS(t *testing.T) {
	p := ClonePair{NgramSimilarity: 40, LcsSimilarity: intPtr(75)}
	assert.Equal(t, 75, p.EffectiveSimilarity())
}

func TestEffectiveSimilarityFallsBackToNgramWhenNoLCS(t *testing.T) {
	p := ClonePair{NgramSimilarity: 40}
	assert.Equal(t, 40, p.EffectiveSimilarity())
}

func TestNewPairKeyCanonicalOrder(t *testing.T) {
	assert.Equal(t, NewPairKey("a", "b"), NewPairKey("b", "a"))
}

func TestCloneGroupSizeAndIsClone(t *testing.T) {
	g := CloneGroup{GroupID: "g1", Members: []string{"a"}}
	assert.Equal(t, 1, g.Size())
	assert.False(t, g.IsClone())

	g.Members = append(g.Members, "b")
	assert.True(t, g.IsClone())
}

func TestCloneGroupAggregatesEmptyWhenNoPairs(t *testing.T) {
	g := CloneGroup{GroupID: "g1", Members: []string{"a"}}
	_, ok := g.AvgSimilarity()
	assert.False(t, ok)
	_, ok = g.MinSimilarity()
	assert.False(t, ok)
	_, ok = g.MaxSimilarity()
	assert.False(t, ok)
}

func TestCloneGroupAggregates(t *testing.T) {
	g := CloneGroup{
		GroupID: "g1",
		Members: []string{"a", "b", "c"},
		PairSimilarities: map[PairKey]int{
			NewPairKey("a", "b"): 80,
			NewPairKey("b", "c"): 90,
			NewPairKey("a", "c"): 70,
		},
	}
	avg, ok := g.AvgSimilarity()
	require.True(t, ok)
	assert.InDelta(t, 80.0, avg, 0.001)

	min, ok := g.MinSimilarity()
	require.True(t, ok)
	assert.Equal(t, 70, min)

	max, ok := g.MaxSimilarity()
	require.True(t, ok)
	assert.Equal(t, 90, max)

	assert.InDelta(t, 1.0, g.Density(), 0.001) // 3 pairs out of C(3,2)=3
}

func TestCloneGroupDensityPartial(t *testing.T) {
	g := CloneGroup{
		GroupID: "g1",
		Members: []string{"a", "b", "c"},
		PairSimilarities: map[PairKey]int{
			NewPairKey("a", "b"): 80,
		},
	}
	assert.InDelta(t, 1.0/3.0, g.Density(), 0.001)
}

func TestCloneGroupDensitySingletonIsZero(t *testing.T) {
	g := CloneGroup{GroupID: "g1", Members: []string{"a"}}
	assert.Equal(t, 0.0, g.Density())
}

func TestGroupMatchMatched(t *testing.T) {
	assert.True(t, GroupMatch{TargetGroupID: "h1"}.Matched())
	assert.False(t, GroupMatch{}.Matched())
}
