package models

import (
	"sort"
	"time"

	"github.com/clonetrace/clonetrace/pkg/stats"
)

// ClonePair is a recorded intra-revision similarity between two blocks.
// NgramSimilarity and LcsSimilarity are integers in [0,100]; LcsSimilarity
// is absent (nil) whenever NgramSimilarity >= 70, per the producer
// contract.
type ClonePair struct {
	BlockID1        string
	BlockID2        string
	NgramSimilarity int
	LcsSimilarity   *int
}

// EffectiveSimilarity applies the rule from the data model: NgramSimilarity
// if it already clears the exact-match shortcut (>=70), otherwise
// LcsSimilarity if present, otherwise NgramSimilarity.
func (p ClonePair) EffectiveSimilarity() int {
	if p.NgramSimilarity >= 70 {
		return p.NgramSimilarity
	}
	if p.LcsSimilarity != nil {
		return *p.LcsSimilarity
	}
	return p.NgramSimilarity
}

// PairKey is an unordered key over two block ids, used to index
// pair_similarities and similarity caches.
type PairKey struct {
	A, B string
}

// NewPairKey returns a canonical (lexicographically ordered) PairKey so
// that (x,y) and (y,x) collide to the same map entry.
func NewPairKey(a, b string) PairKey {
	if a <= b {
		return PairKey{A: a, B: b}
	}
	return PairKey{A: b, B: a}
}

// Revision is a snapshot identified by a canonically sortable timestamp
// string and an associated absolute date.
type Revision struct {
	RevisionID string
	Timestamp  string
	Date       time.Time
	Blocks     []CodeBlock
	Pairs      []ClonePair
}

// CloneGroup is a connected component of one revision's similarity graph.
type CloneGroup struct {
	GroupID          string
	Members          []string // sorted, deterministic order
	PairSimilarities map[PairKey]int
}

// Size returns the member count.
func (g CloneGroup) Size() int {
	return len(g.Members)
}

// IsClone reports whether the group has more than one member.
func (g CloneGroup) IsClone() bool {
	return g.Size() >= 2
}

// similarityValues returns the pair similarities in deterministic order,
// for use by aggregate helpers that must be reproducible.
func (g CloneGroup) similarityValues() []int {
	keys := make([]PairKey, 0, len(g.PairSimilarities))
	for k := range g.PairSimilarities {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	vals := make([]int, len(keys))
	for i, k := range keys {
		vals[i] = g.PairSimilarities[k]
	}
	return vals
}

// AvgSimilarity, MinSimilarity and MaxSimilarity return the pairwise
// similarity aggregates, and ok=false when the group has no recorded
// pairs (size 1, or size >=2 with an anomalous empty pair set). All three
// are gonum-backed via pkg/stats rather than hand-rolled.
func (g CloneGroup) AvgSimilarity() (float64, bool) {
	vals := g.similarityValues()
	if len(vals) == 0 {
		return 0, false
	}
	return stats.IntMean(vals), true
}

func (g CloneGroup) MinSimilarity() (int, bool) {
	return stats.IntMin(g.similarityValues())
}

func (g CloneGroup) MaxSimilarity() (int, bool) {
	return stats.IntMax(g.similarityValues())
}

// Density is |pair_similarities| / C(size, 2), the fraction of possible
// pairs within the group that were actually recorded as similar.
func (g CloneGroup) Density() float64 {
	n := g.Size()
	if n < 2 {
		return 0
	}
	possible := n * (n - 1) / 2
	return float64(len(g.PairSimilarities)) / float64(possible)
}

// MatchType distinguishes how a MethodMatch was obtained.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = "none"
)

// MethodMatch is the outcome of matching one source block against the
// other revision's blocks.
type MethodMatch struct {
	Type       MatchType
	Target     string // target block_id; empty when Type == MatchNone
	Similarity int    // valid when Type == MatchFuzzy; 100 implied for MatchExact
}

// GroupMatch is the outcome of matching one source group against the
// other revision's groups.
type GroupMatch struct {
	SourceGroupID string
	TargetGroupID string // empty when no target matched
	OverlapCount  int
	OverlapRatio  float64
	SourceSize    int
	TargetSize    int
	Split         bool
	Merge         bool
}

// Matched reports whether a target group was found.
func (m GroupMatch) Matched() bool {
	return m.TargetGroupID != ""
}
