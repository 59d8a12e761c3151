// Package classify implements the method and group lifecycle
// classification from spec §4.6. The state machine is novel to this
// engine; it is structured as small single-purpose pure functions in the
// style of the textual-similarity analyzer's helper functions in the
// example corpus.
package classify

import "github.com/clonetrace/clonetrace/pkg/models"

// DefaultGroupSizeTolerance is the default fractional tolerance for
// distinguishing CONTINUED from GROWN/SHRUNK.
const DefaultGroupSizeTolerance = 0.10

// SurvivedInput bundles what ClassifySurvived needs to pick a sub-state
// for a block that is the target of a match from the previous revision.
type SurvivedInput struct {
	MatchType    models.MatchType
	OldGroupSize int
	NewGroupSize int
}

// ClassifySurvived returns the sub-state for a block in the new revision
// that some old-revision block matched onto.
func ClassifySurvived(in SurvivedInput) models.MethodStateDetail {
	if in.MatchType == models.MatchFuzzy {
		return models.DetailSurvivedModified
	}
	// Exact match.
	if in.OldGroupSize == 1 && in.NewGroupSize == 1 {
		return models.DetailSurvivedUnchanged
	}
	switch {
	case in.NewGroupSize > in.OldGroupSize:
		return models.DetailSurvivedCloneGain
	case in.NewGroupSize < in.OldGroupSize:
		return models.DetailSurvivedCloneLoss
	default:
		return models.DetailSurvivedUnchanged
	}
}

// AddedInput bundles what ClassifyAdded needs for a block with no
// predecessor match.
type AddedInput struct {
	NewGroupSize int
	// OtherMembersSurvived is true when the new group (if any) contains
	// at least one member, other than this block, that is itself
	// SURVIVED rather than ADDED.
	OtherMembersSurvived bool
}

// ClassifyAdded returns the sub-state for a block with no predecessor.
func ClassifyAdded(in AddedInput) models.MethodStateDetail {
	if in.NewGroupSize <= 1 {
		return models.DetailAddedIsolated
	}
	if in.OtherMembersSurvived {
		return models.DetailAddedToGroup
	}
	return models.DetailAddedNewGroup
}

// DeletedInput bundles what ClassifyDeleted needs for a block with no
// successor match.
type DeletedInput struct {
	OldGroupSize  int
	SurvivorCount int // members of the old group (including this one) that matched forward
}

// ClassifyDeleted returns the sub-state for a block with no successor.
func ClassifyDeleted(in DeletedInput) models.MethodStateDetail {
	if in.OldGroupSize <= 1 {
		return models.DetailDeletedIsolated
	}
	if in.SurvivorCount == 0 {
		return models.DetailDeletedLastMember
	}
	return models.DetailDeletedFromGroup
}

// ClassifyGroup returns the lifecycle state for an old group given its
// GroupMatch, per spec §4.6: dissolved/merged/split take precedence, then
// size delta vs tolerance. tolerance <= 0 selects
// DefaultGroupSizeTolerance.
func ClassifyGroup(gm models.GroupMatch, tolerance float64) models.GroupState {
	if tolerance <= 0 {
		tolerance = DefaultGroupSizeTolerance
	}
	if !gm.Matched() {
		return models.GroupDissolved
	}
	// Per spec §4.6 and the documented Open Question decision (SPLIT
	// wins when both flags would apply to the same group).
	if gm.Split {
		return models.GroupSplit
	}
	if gm.Merge {
		return models.GroupMerged
	}
	if gm.SourceSize == 0 {
		return models.GroupContinued
	}
	delta := float64(gm.TargetSize-gm.SourceSize) / float64(gm.SourceSize)
	switch {
	case delta > tolerance:
		return models.GroupGrown
	case delta < -tolerance:
		return models.GroupShrunk
	default:
		return models.GroupContinued
	}
}
