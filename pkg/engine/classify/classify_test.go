package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clonetrace/clonetrace/pkg/models"
)

func TestClassifySurvivedFuzzyIsModified(t *testing.T) {
	got := ClassifySurvived(SurvivedInput{MatchType: models.MatchFuzzy, OldGroupSize: 2, NewGroupSize: 2})
	assert.Equal(t, models.DetailSurvivedModified, got)
}

func TestClassifySurvivedExactSingletonBothSidesIsUnchanged(t *testing.T) {
	got := ClassifySurvived(SurvivedInput{MatchType: models.MatchExact, OldGroupSize: 1, NewGroupSize: 1})
	assert.Equal(t, models.DetailSurvivedUnchanged, got)
}

func TestClassifySurvivedExactGroupGrewIsCloneGain(t *testing.T) {
	got := ClassifySurvived(SurvivedInput{MatchType: models.MatchExact, OldGroupSize: 1, NewGroupSize: 3})
	assert.Equal(t, models.DetailSurvivedCloneGain, got)
}

func TestClassifySurvivedExactGroupShrankIsCloneLoss(t *testing.T) {
	got := ClassifySurvived(SurvivedInput{MatchType: models.MatchExact, OldGroupSize: 3, NewGroupSize: 1})
	assert.Equal(t, models.DetailSurvivedCloneLoss, got)
}

func TestClassifySurvivedExactSameSizeNonSingletonIsUnchanged(t *testing.T) {
	got := ClassifySurvived(SurvivedInput{MatchType: models.MatchExact, OldGroupSize: 3, NewGroupSize: 3})
	assert.Equal(t, models.DetailSurvivedUnchanged, got)
}

func TestClassifyAddedIsolated(t *testing.T) {
	got := ClassifyAdded(AddedInput{NewGroupSize: 1})
	assert.Equal(t, models.DetailAddedIsolated, got)
}

func TestClassifyAddedToExistingGroup(t *testing.T) {
	got := ClassifyAdded(AddedInput{NewGroupSize: 3, OtherMembersSurvived: true})
	assert.Equal(t, models.DetailAddedToGroup, got)
}

func TestClassifyAddedNewGroup(t *testing.T) {
	got := ClassifyAdded(AddedInput{NewGroupSize: 2, OtherMembersSurvived: false})
	assert.Equal(t, models.DetailAddedNewGroup, got)
}

func TestClassifyDeletedIsolated(t *testing.T) {
	got := ClassifyDeleted(DeletedInput{OldGroupSize: 1, SurvivorCount: 0})
	assert.Equal(t, models.DetailDeletedIsolated, got)
}

func TestClassifyDeletedLastMember(t *testing.T) {
	got := ClassifyDeleted(DeletedInput{OldGroupSize: 2, SurvivorCount: 0})
	assert.Equal(t, models.DetailDeletedLastMember, got)
}

func TestClassifyDeletedFromGroup(t *testing.T) {
	got := ClassifyDeleted(DeletedInput{OldGroupSize: 3, SurvivorCount: 2})
	assert.Equal(t, models.DetailDeletedFromGroup, got)
}

func TestClassifyGroupDissolved(t *testing.T) {
	gm := models.GroupMatch{SourceGroupID: "g1"}
	assert.Equal(t, models.GroupDissolved, ClassifyGroup(gm, 0))
}

func TestClassifyGroupSplitWinsOverMerge(t *testing.T) {
	gm := models.GroupMatch{SourceGroupID: "g1", TargetGroupID: "h1", Split: true, Merge: true, SourceSize: 4, TargetSize: 2}
	assert.Equal(t, models.GroupSplit, ClassifyGroup(gm, 0))
}

func TestClassifyGroupGrown(t *testing.T) {
	gm := models.GroupMatch{SourceGroupID: "g1", TargetGroupID: "h1", SourceSize: 2, TargetSize: 5}
	assert.Equal(t, models.GroupGrown, ClassifyGroup(gm, 0.10))
}

func TestClassifyGroupShrunk(t *testing.T) {
	gm := models.GroupMatch{SourceGroupID: "g1", TargetGroupID: "h1", SourceSize: 5, TargetSize: 2}
	assert.Equal(t, models.GroupShrunk, ClassifyGroup(gm, 0.10))
}

func TestClassifyGroupContinuedWithinTolerance(t *testing.T) {
	gm := models.GroupMatch{SourceGroupID: "g1", TargetGroupID: "h1", SourceSize: 10, TargetSize: 10}
	assert.Equal(t, models.GroupContinued, ClassifyGroup(gm, 0.10))
}
