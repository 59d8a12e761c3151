package models

// MethodState is the coarse lifecycle bucket a method falls into at a
// given revision.
type MethodState string

const (
	MethodDeleted  MethodState = "deleted"
	MethodSurvived MethodState = "survived"
	MethodAdded    MethodState = "added"
)

// MethodStateDetail is the refined sub-state, per spec §4.6.
type MethodStateDetail string

const (
	DetailSurvivedUnchanged  MethodStateDetail = "survived_unchanged"
	DetailSurvivedCloneGain  MethodStateDetail = "survived_clone_gained"
	DetailSurvivedCloneLoss  MethodStateDetail = "survived_clone_lost"
	DetailSurvivedModified   MethodStateDetail = "survived_modified"
	DetailAddedIsolated      MethodStateDetail = "added_isolated"
	DetailAddedToGroup       MethodStateDetail = "added_to_group"
	DetailAddedNewGroup      MethodStateDetail = "added_new_group"
	DetailDeletedIsolated    MethodStateDetail = "deleted_isolated"
	DetailDeletedLastMember  MethodStateDetail = "deleted_last_member"
	DetailDeletedFromGroup   MethodStateDetail = "deleted_from_group"
)

// GroupState is the lifecycle label attached to a CloneGroup at a given
// revision.
type GroupState string

const (
	GroupBorn      GroupState = "born"
	GroupContinued GroupState = "continued"
	GroupGrown     GroupState = "grown"
	GroupShrunk    GroupState = "shrunk"
	GroupSplit     GroupState = "split"
	GroupMerged    GroupState = "merged"
	GroupDissolved GroupState = "dissolved"
)

// MethodTraceRow is one row of the 17-column method trace output.
type MethodTraceRow struct {
	RevisionID       string
	BlockID          string
	FunctionName     string
	FilePath         string
	StartLine        int
	EndLine          int
	LOC              int
	State            MethodState
	StateDetail      MethodStateDetail
	MatchedBlockID   string
	MatchType        MatchType
	MatchSimilarity  *int
	CloneCount       int
	CloneGroupID     string
	CloneGroupSize   int
	LifetimeRevisions int
	LifetimeDays     int
}

// GroupTraceRow is one row of the 14-column group trace output.
type GroupTraceRow struct {
	RevisionID        string
	GroupID           string
	MemberCount       int
	AvgSimilarity     *float64
	MinSimilarity     *int
	MaxSimilarity     *int
	Density           float64
	State             GroupState
	MatchedGroupID    string
	OverlapRatio      *float64
	MemberAdded       int
	MemberRemoved     int
	LifetimeRevisions int
	LifetimeDays      int
}

// MembershipRow is one row of the 5-column membership snapshot.
type MembershipRow struct {
	RevisionID   string
	GroupID      string
	BlockID      string
	FunctionName string
	IsClone      bool
}

// WarningKind classifies a non-fatal condition surfaced alongside trace
// output.
type WarningKind string

const (
	WarningLowMatchRate    WarningKind = "low_match_rate"
	WarningGroupNoPairs    WarningKind = "group_no_pair_similarities"
	WarningZeroDayLifetime WarningKind = "zero_day_lifetime"
)

// Warning is a non-fatal condition the tracker surfaces for a given
// revision without aborting processing.
type Warning struct {
	Kind       WarningKind
	RevisionID string
	Detail     string
}
