// Package grouping implements per-revision clone-group construction from
// a block catalogue and a clone-pair list, grounded on the connected
// components grouping strategy used for clone-fragment grouping in the
// example corpus, generalized to the engine's group_threshold semantics.
package grouping

import (
	"sort"

	"github.com/clonetrace/clonetrace/pkg/engine/disjointset"
	"github.com/clonetrace/clonetrace/pkg/models"
)

// DefaultGroupThreshold is the default minimum effective similarity (0-100)
// at which two blocks are unioned into the same clone group.
const DefaultGroupThreshold = 70

// Detector builds CloneGroups for one revision.
type Detector struct {
	GroupThreshold int
}

// NewDetector returns a Detector using groupThreshold, or
// DefaultGroupThreshold when groupThreshold <= 0.
func NewDetector(groupThreshold int) *Detector {
	if groupThreshold <= 0 {
		groupThreshold = DefaultGroupThreshold
	}
	return &Detector{GroupThreshold: groupThreshold}
}

// Detect computes the clone groups for one revision's blocks and pairs.
// Every block id is inserted up front so singleton groups are preserved;
// every pair whose effective similarity meets GroupThreshold unions its
// two endpoints. Groups are returned ordered by group_id (the
// lexicographically smallest member).
func (d *Detector) Detect(blocks []models.CodeBlock, pairs []models.ClonePair) []models.CloneGroup {
	ds := disjointset.New()
	for _, b := range blocks {
		ds.Find(b.BlockID) // auto-inserts as a singleton
	}

	accepted := make([]models.ClonePair, 0, len(pairs))
	for _, p := range pairs {
		if p.EffectiveSimilarity() >= d.GroupThreshold {
			ds.Union(p.BlockID1, p.BlockID2)
			accepted = append(accepted, p)
		}
	}

	components := ds.Groups()
	groups := make([]models.CloneGroup, 0, len(components))
	for _, members := range components {
		groupID := members[0] // Groups() already sorts members ascending
		groups = append(groups, models.CloneGroup{
			GroupID:          groupID,
			Members:          members,
			PairSimilarities: make(map[models.PairKey]int),
		})
	}

	groupOf := make(map[string]int, len(blocks))
	for i, g := range groups {
		for _, m := range g.Members {
			groupOf[m] = i
		}
	}
	for _, p := range accepted {
		gi, ok := groupOf[p.BlockID1]
		if !ok {
			continue
		}
		groups[gi].PairSimilarities[models.NewPairKey(p.BlockID1, p.BlockID2)] = p.EffectiveSimilarity()
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })
	return groups
}

// Insert exposes disjointset insertion semantics for callers that need a
// singleton group placeholder without a full Detect pass. The tracker does
// not call it; it builds every revision's groups, the first included, with
// Detect.
func Insert(ds *disjointset.DisjointSet, blockID string) {
	ds.Find(blockID) // Find auto-inserts
}
