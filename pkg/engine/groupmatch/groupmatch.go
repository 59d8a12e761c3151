// Package groupmatch implements cross-revision group matching by member
// overlap with split/merge detection, per spec §4.7. There is no direct
// analogue for split/merge detection in the example corpus; the
// deterministic tie-break and accumulation style follow the corpus's
// general convention of building a counts map then resolving ties by
// lexicographic id order.
package groupmatch

import (
	"sort"

	"github.com/clonetrace/clonetrace/pkg/models"
)

// DefaultOverlapThreshold is the minimum overlap_ratio required to accept
// a candidate match.
const DefaultOverlapThreshold = 0.50

// Matcher matches groups_old against groups_new using method-level
// matches old->new.
type Matcher struct {
	OverlapThreshold float64
}

// NewMatcher returns a Matcher using overlapThreshold, or
// DefaultOverlapThreshold when overlapThreshold <= 0.
func NewMatcher(overlapThreshold float64) *Matcher {
	if overlapThreshold <= 0 {
		overlapThreshold = DefaultOverlapThreshold
	}
	return &Matcher{OverlapThreshold: overlapThreshold}
}

// Match returns one GroupMatch per old group per accepted target, plus
// split/merge flags attached per the precise predicate in spec §4.7: split
// = the same source group has two or more accepted targets with individual
// ratios >= overlap_threshold (one entry is emitted per accepted target, so
// every split descendant carries its own lineage-bearing entry); merge =
// the same target group is the best (primary) accepted match of two or
// more distinct source groups. An old group with no accepted target yields
// a single unmatched entry.
func (m *Matcher) Match(groupsOld, groupsNew []models.CloneGroup, methodMatches map[string]models.MethodMatch) []models.GroupMatch {
	newGroupOfBlock := make(map[string]string, 64)
	for _, g := range groupsNew {
		for _, member := range g.Members {
			newGroupOfBlock[member] = g.GroupID
		}
	}

	type scored struct {
		gid   string
		count int
	}

	// acceptedByGroup holds every candidate clearing overlap_threshold, in
	// rank order (best first); noMatch holds the placeholder for old
	// groups with nothing accepted.
	acceptedByGroup := make(map[string][]models.GroupMatch, len(groupsOld))
	noMatch := make(map[string]models.GroupMatch, len(groupsOld))

	for _, g := range groupsOld {
		counts := make(map[string]int)
		for _, member := range g.Members {
			mm, ok := methodMatches[member]
			if !ok || mm.Type == models.MatchNone {
				continue
			}
			if tgid, ok := newGroupOfBlock[mm.Target]; ok {
				counts[tgid]++
			}
		}

		var candidates []scored
		for gid, c := range counts {
			candidates = append(candidates, scored{gid: gid, count: c})
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].count != candidates[j].count {
				return candidates[i].count > candidates[j].count
			}
			return candidates[i].gid < candidates[j].gid
		})

		sourceSize := len(g.Members)
		var acceptedForGroup []models.GroupMatch
		for _, c := range candidates {
			ratio := float64(c.count) / float64(sourceSize)
			if ratio < m.OverlapThreshold {
				continue
			}
			targetSize := groupSize(groupsNew, c.gid)
			acceptedForGroup = append(acceptedForGroup, models.GroupMatch{
				SourceGroupID: g.GroupID,
				TargetGroupID: c.gid,
				OverlapCount:  c.count,
				OverlapRatio:  ratio,
				SourceSize:    sourceSize,
				TargetSize:    targetSize,
			})
		}

		if len(acceptedForGroup) == 0 {
			noMatch[g.GroupID] = models.GroupMatch{SourceGroupID: g.GroupID, SourceSize: sourceSize}
			continue
		}
		acceptedByGroup[g.GroupID] = acceptedForGroup
	}

	// Merge detection: a target group claimed as the primary (best)
	// match by >=2 distinct source groups.
	targetClaimCount := make(map[string]int)
	for _, accepted := range acceptedByGroup {
		targetClaimCount[accepted[0].TargetGroupID]++
	}

	out := make([]models.GroupMatch, 0, len(groupsOld))
	for _, g := range groupsOld {
		accepted, ok := acceptedByGroup[g.GroupID]
		if !ok {
			out = append(out, noMatch[g.GroupID])
			continue
		}
		split := len(accepted) >= 2
		for _, gm := range accepted {
			gm.Split = split
			if targetClaimCount[gm.TargetGroupID] >= 2 {
				gm.Merge = true
			}
			out = append(out, gm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceGroupID != out[j].SourceGroupID {
			return out[i].SourceGroupID < out[j].SourceGroupID
		}
		return out[i].TargetGroupID < out[j].TargetGroupID
	})
	return out
}

func groupSize(groups []models.CloneGroup, groupID string) int {
	for _, g := range groups {
		if g.GroupID == groupID {
			return g.Size()
		}
	}
	return 0
}
