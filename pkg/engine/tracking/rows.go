package tracking

import "github.com/clonetrace/clonetrace/pkg/models"

func methodRow(revisionID string, b models.CodeBlock, state models.MethodState, detail models.MethodStateDetail, matchedBlockID string, matchType models.MatchType, similarity *int, groupID string, groupSize, lifetimeRevisions, lifetimeDays int) models.MethodTraceRow {
	cloneCount := 0
	if groupSize > 0 {
		cloneCount = groupSize - 1
	}
	return models.MethodTraceRow{
		RevisionID:        revisionID,
		BlockID:           b.BlockID,
		FunctionName:      b.FunctionName,
		FilePath:          b.FilePath,
		StartLine:         b.StartLine,
		EndLine:           b.EndLine,
		LOC:               b.LOC(),
		State:             state,
		StateDetail:       detail,
		MatchedBlockID:    matchedBlockID,
		MatchType:         matchType,
		MatchSimilarity:   similarity,
		CloneCount:        cloneCount,
		CloneGroupID:      groupID,
		CloneGroupSize:    groupSize,
		LifetimeRevisions: lifetimeRevisions,
		LifetimeDays:      lifetimeDays,
	}
}

func groupRow(revisionID string, g models.CloneGroup, state models.GroupState, matchedGroupID string, overlapRatio *float64, memberAdded, memberRemoved, lifetimeRevisions, lifetimeDays int) models.GroupTraceRow {
	row := models.GroupTraceRow{
		RevisionID:        revisionID,
		GroupID:           g.GroupID,
		MemberCount:       g.Size(),
		Density:           g.Density(),
		State:             state,
		MatchedGroupID:    matchedGroupID,
		OverlapRatio:      overlapRatio,
		MemberAdded:       memberAdded,
		MemberRemoved:     memberRemoved,
		LifetimeRevisions: lifetimeRevisions,
		LifetimeDays:      lifetimeDays,
	}
	if avg, ok := g.AvgSimilarity(); ok {
		row.AvgSimilarity = &avg
	}
	if min, ok := g.MinSimilarity(); ok {
		row.MinSimilarity = &min
	}
	if max, ok := g.MaxSimilarity(); ok {
		row.MaxSimilarity = &max
	}
	return row
}

func appendMembership(result *Result, revisionID string, g models.CloneGroup, groupSize map[string]int, blocksByID map[string]models.CodeBlock) {
	for _, member := range g.Members {
		result.Membership = append(result.Membership, models.MembershipRow{
			RevisionID:   revisionID,
			GroupID:      g.GroupID,
			BlockID:      member,
			FunctionName: blocksByID[member].FunctionName,
			IsClone:      groupSize[g.GroupID] >= 2,
		})
	}
}

func methodRowLess(a, b models.MethodTraceRow) bool {
	if a.RevisionID != b.RevisionID {
		return a.RevisionID < b.RevisionID
	}
	return a.BlockID < b.BlockID
}

func groupRowLess(a, b models.GroupTraceRow) bool {
	if a.RevisionID != b.RevisionID {
		return a.RevisionID < b.RevisionID
	}
	return a.GroupID < b.GroupID
}

func membershipRowLess(a, b models.MembershipRow) bool {
	if a.RevisionID != b.RevisionID {
		return a.RevisionID < b.RevisionID
	}
	if a.GroupID != b.GroupID {
		return a.GroupID < b.GroupID
	}
	return a.BlockID < b.BlockID
}
