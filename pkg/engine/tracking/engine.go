// Package tracking implements MethodTracker and GroupTracker (spec
// §4.8-§4.9): the orchestration that drives a revision sequence,
// maintains lineage bookkeeping, and emits trace rows. It is grounded on
// the revision-sequence driving loop used for cross-commit trend analysis
// in the example corpus (accumulate per-commit analyses, then derive
// trends), generalized here to method/group lineage instead of commit
// metrics.
package tracking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/clonetrace/clonetrace/pkg/engine/classify"
	"github.com/clonetrace/clonetrace/pkg/engine/grouping"
	"github.com/clonetrace/clonetrace/pkg/engine/groupmatch"
	"github.com/clonetrace/clonetrace/pkg/engine/matching"
	"github.com/clonetrace/clonetrace/pkg/models"
)

// ProgressHook is invoked once per processed revision, after its rows
// have been appended. Library consumers may wire this to any UI,
// including the schollz/progressbar/v3 adapter in progress.go.
type ProgressHook func(index, total int, revisionID string)

// Engine drives MethodTracker and GroupTracker together over a revision
// sequence obtained from a models.RevisionSource, since both share the
// same per-pair GroupDetector/MethodMatcher computation.
type Engine struct {
	cfg    Config
	source models.RevisionSource
	hook   ProgressHook
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithProgressHook registers a callback invoked after each revision is
// processed.
func WithProgressHook(hook ProgressHook) Option {
	return func(e *Engine) { e.hook = hook }
}

// New returns an Engine for cfg and source. cfg is validated immediately.
func New(cfg Config, source models.RevisionSource, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, models.NewInvalidConfigError("engine config", err)
	}
	e := &Engine{cfg: cfg, source: source}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result bundles every output stream the engine produces.
type Result struct {
	MethodRows []models.MethodTraceRow
	GroupRows  []models.GroupTraceRow
	Membership []models.MembershipRow
	Warnings   []models.Warning
}

type revisionState struct {
	revision   models.Revision
	allGroups  []models.CloneGroup // includes singletons
	groupOf    map[string]string   // block_id -> group_id, over allGroups
	groupSize  map[string]int      // group_id -> size, over allGroups
	cloneOnly  []models.CloneGroup // size >= 2 only
	blocksByID map[string]models.CodeBlock
}

// Run drives the whole pipeline from start to end (either bound may be
// nil for an open range) and returns the accumulated trace output.
func (e *Engine) Run(ctx context.Context, start, end *time.Time) (*Result, error) {
	refs, err := e.source.Enumerate(ctx, start, end)
	if err != nil {
		return nil, models.NewTransientError(err)
	}

	result := &Result{}
	methodBook := newLineageBook()
	groupBook := newLineageBook()

	var prev *revisionState
	var prevMethodLineage map[string]string // block_id (in prev revision) -> lineage id
	var prevGroupLineage map[string]string  // group_id (in prev revision) -> lineage id

	detector := grouping.NewDetector(e.cfg.GroupThreshold)

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blocks, pairs, err := e.source.Load(ctx, ref.RevisionID)
		if err != nil {
			return nil, models.NewTransientError(err)
		}
		if err := validateBlocks(ref.RevisionID, blocks); err != nil {
			return nil, err
		}
		if err := validatePairs(ref.RevisionID, blocks, pairs); err != nil {
			return nil, err
		}

		rev := models.Revision{RevisionID: ref.RevisionID, Timestamp: ref.Timestamp, Date: ref.Date, Blocks: blocks, Pairs: pairs}
		groups := detector.Detect(blocks, pairs)
		cur := buildRevisionState(rev, groups)

		if prev == nil {
			curMethodLineage, curGroupLineage := e.processFirstRevision(cur, methodBook, groupBook, result)
			prevMethodLineage, prevGroupLineage = curMethodLineage, curGroupLineage
			prev = cur
			e.notify(i, len(refs), ref.RevisionID)
			continue
		}

		curMethodLineage, curGroupLineage, err := e.processPair(ctx, prev, cur, prevMethodLineage, prevGroupLineage, methodBook, groupBook, result)
		if err != nil {
			return nil, err
		}
		prevMethodLineage, prevGroupLineage = curMethodLineage, curGroupLineage
		prev = cur
		e.notify(i, len(refs), ref.RevisionID)
	}

	sort.Slice(result.MethodRows, func(i, j int) bool { return methodRowLess(result.MethodRows[i], result.MethodRows[j]) })
	sort.Slice(result.GroupRows, func(i, j int) bool { return groupRowLess(result.GroupRows[i], result.GroupRows[j]) })
	sort.Slice(result.Membership, func(i, j int) bool { return membershipRowLess(result.Membership[i], result.Membership[j]) })
	return result, nil
}

func (e *Engine) notify(index, total int, revisionID string) {
	if e.hook != nil {
		e.hook(index, total, revisionID)
	}
}

func validateBlocks(revisionID string, blocks []models.CodeBlock) error {
	for _, b := range blocks {
		if err := b.Validate(); err != nil {
			return models.NewInputFormatError(revisionID, b.BlockID, err.Error())
		}
	}
	return nil
}

// validatePairs enforces spec §7's MissingData rule: every clone pair must
// name two block ids present in the revision's own block catalogue. A
// pair referencing an absent block is fatal for the revision pair rather
// than silently unioned into a phantom group member.
func validatePairs(revisionID string, blocks []models.CodeBlock, pairs []models.ClonePair) error {
	known := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		known[b.BlockID] = true
	}
	for _, p := range pairs {
		if !known[p.BlockID1] {
			return models.NewMissingDataError(revisionID, p.BlockID1)
		}
		if !known[p.BlockID2] {
			return models.NewMissingDataError(revisionID, p.BlockID2)
		}
	}
	return nil
}

func buildRevisionState(rev models.Revision, groups []models.CloneGroup) *revisionState {
	groupOf := make(map[string]string, len(rev.Blocks))
	groupSize := make(map[string]int, len(groups))
	var cloneOnly []models.CloneGroup
	for _, g := range groups {
		groupSize[g.GroupID] = g.Size()
		for _, m := range g.Members {
			groupOf[m] = g.GroupID
		}
		if g.IsClone() {
			cloneOnly = append(cloneOnly, g)
		}
	}
	return &revisionState{revision: rev, allGroups: groups, groupOf: groupOf, groupSize: groupSize, cloneOnly: cloneOnly, blocksByID: blockByID(rev.Blocks)}
}

func blockByID(blocks []models.CodeBlock) map[string]models.CodeBlock {
	m := make(map[string]models.CodeBlock, len(blocks))
	for _, b := range blocks {
		m[b.BlockID] = b
	}
	return m
}

// processFirstRevision treats every block as ADDED and every clone group
// as BORN, per spec §4.8 step 2.
func (e *Engine) processFirstRevision(cur *revisionState, methodBook, groupBook *lineageBook, result *Result) (methodLineage, groupLineage map[string]string) {
	methodLineage = make(map[string]string, len(cur.revision.Blocks))
	groupLineage = make(map[string]string, len(cur.cloneOnly))

	for _, b := range cur.revision.Blocks {
		lineageID := b.BlockID
		methodLineage[b.BlockID] = lineageID
		revs, days := methodBook.get(lineageID).observe(cur.revision.Date)
		gid := cur.groupOf[b.BlockID]
		gsize := cur.groupSize[gid]

		detail := classify.ClassifyAdded(classify.AddedInput{NewGroupSize: gsize, OtherMembersSurvived: false})
		result.MethodRows = append(result.MethodRows, methodRow(cur.revision.RevisionID, b, models.MethodAdded, detail, "", models.MatchNone, nil, gid, gsize, revs, days))
	}

	for _, g := range cur.cloneOnly {
		lineageID := g.GroupID
		groupLineage[g.GroupID] = lineageID
		revs, days := groupBook.get(lineageID).observe(cur.revision.Date)
		result.GroupRows = append(result.GroupRows, groupRow(cur.revision.RevisionID, g, models.GroupBorn, "", nil, 0, 0, revs, days))
		appendMembership(result, cur.revision.RevisionID, g, cur.groupSize, cur.blocksByID)
	}
	return methodLineage, groupLineage
}

// processPair runs one consecutive revision pair end to end: matching,
// classification, lineage update, row emission.
func (e *Engine) processPair(ctx context.Context, prev, cur *revisionState, prevMethodLineage, prevGroupLineage map[string]string, methodBook, groupBook *lineageBook, result *Result) (methodLineage, groupLineage map[string]string, err error) {
	matcher, err := matching.New(e.cfg.Matching)
	if err != nil {
		return nil, nil, err
	}
	oldToNew, err := matcher.Match(ctx, prev.revision.Blocks, cur.revision.Blocks)
	if err != nil {
		return nil, nil, fmt.Errorf("match revision %s -> %s: %w", prev.revision.RevisionID, cur.revision.RevisionID, err)
	}

	targetToSource := make(map[string]string, len(oldToNew))
	for sourceID, mm := range oldToNew {
		if mm.Type != models.MatchNone {
			targetToSource[mm.Target] = sourceID
		}
	}

	// Pass 1: determine survived/added for every current block.
	survivedSourceOf := make(map[string]string, len(cur.revision.Blocks)) // new block -> old source block
	for _, b := range cur.revision.Blocks {
		if src, ok := targetToSource[b.BlockID]; ok {
			survivedSourceOf[b.BlockID] = src
		}
	}

	groupHasSurvivor := make(map[string]bool, len(cur.allGroups))
	for _, b := range cur.revision.Blocks {
		if _, ok := survivedSourceOf[b.BlockID]; ok {
			groupHasSurvivor[cur.groupOf[b.BlockID]] = true
		}
	}

	methodLineage = make(map[string]string, len(cur.revision.Blocks))
	matchedCount := 0

	for _, b := range cur.revision.Blocks {
		gid := cur.groupOf[b.BlockID]
		gsize := cur.groupSize[gid]
		if srcID, ok := survivedSourceOf[b.BlockID]; ok {
			matchedCount++
			mm := oldToNew[srcID]
			oldGid := prev.groupOf[srcID]
			oldGsize := prev.groupSize[oldGid]
			detail := classify.ClassifySurvived(classify.SurvivedInput{MatchType: mm.Type, OldGroupSize: oldGsize, NewGroupSize: gsize})
			lineageID := prevMethodLineage[srcID]
			if lineageID == "" {
				lineageID = srcID
			}
			methodLineage[b.BlockID] = lineageID
			revs, days := methodBook.get(lineageID).observe(cur.revision.Date)

			var simPtr *int
			if mm.Type == models.MatchExact {
				v := 100
				simPtr = &v
			} else {
				v := mm.Similarity
				simPtr = &v
			}
			result.MethodRows = append(result.MethodRows, methodRow(cur.revision.RevisionID, b, models.MethodSurvived, detail, srcID, mm.Type, simPtr, gid, gsize, revs, days))
		} else {
			lineageID := b.BlockID
			methodLineage[b.BlockID] = lineageID
			revs, days := methodBook.get(lineageID).observe(cur.revision.Date)
			detail := classify.ClassifyAdded(classify.AddedInput{NewGroupSize: gsize, OtherMembersSurvived: groupHasSurvivor[gid]})
			result.MethodRows = append(result.MethodRows, methodRow(cur.revision.RevisionID, b, models.MethodAdded, detail, "", models.MatchNone, nil, gid, gsize, revs, days))
		}
	}

	// Deleted blocks: old blocks with no forward match.
	oldGroupSurvivorCount := make(map[string]int, len(prev.allGroups))
	for _, b := range prev.revision.Blocks {
		if oldToNew[b.BlockID].Type != models.MatchNone {
			oldGroupSurvivorCount[prev.groupOf[b.BlockID]]++
		}
	}
	for _, b := range prev.revision.Blocks {
		mm := oldToNew[b.BlockID]
		if mm.Type != models.MatchNone {
			continue
		}
		oldGid := prev.groupOf[b.BlockID]
		oldGsize := prev.groupSize[oldGid]
		detail := classify.ClassifyDeleted(classify.DeletedInput{OldGroupSize: oldGsize, SurvivorCount: oldGroupSurvivorCount[oldGid]})
		lineageID := prevMethodLineage[b.BlockID]
		if lineageID == "" {
			lineageID = b.BlockID
		}
		revs, days := methodBook.get(lineageID).snapshot()
		result.MethodRows = append(result.MethodRows, methodRow(cur.revision.RevisionID, b, models.MethodDeleted, detail, "", models.MatchNone, nil, oldGid, oldGsize, revs, days))
	}

	if e.cfg.LowMatchRateFloor > 0 && len(prev.revision.Blocks) > 0 {
		rate := float64(matchedCount) / float64(len(prev.revision.Blocks))
		if len(cur.revision.Blocks) > 0 && rate < e.cfg.LowMatchRateFloor {
			result.Warnings = append(result.Warnings, models.Warning{
				Kind:       models.WarningLowMatchRate,
				RevisionID: cur.revision.RevisionID,
				Detail:     fmt.Sprintf("matched fraction %.2f below floor %.2f", rate, e.cfg.LowMatchRateFloor),
			})
		}
	}

	// Group matching and classification. gm.Match returns one entry per
	// old group per accepted target, so a split source group contributes
	// one entry per descendant and every descendant gets its own
	// lineage-bearing claim below.
	gm := groupmatch.NewMatcher(e.cfg.OverlapThreshold)
	groupMatches := gm.Match(prev.cloneOnly, cur.cloneOnly, oldToNew)
	matchedSource := make(map[string]bool, len(groupMatches))
	for _, m := range groupMatches {
		if m.Matched() {
			matchedSource[m.SourceGroupID] = true
		}
	}

	targetClaimedBy := make(map[string][]models.GroupMatch)
	for _, m := range groupMatches {
		if m.Matched() {
			targetClaimedBy[m.TargetGroupID] = append(targetClaimedBy[m.TargetGroupID], m)
		}
	}

	groupLineage = make(map[string]string, len(cur.cloneOnly))
	oldGroupByID := make(map[string]models.CloneGroup, len(prev.cloneOnly))
	for _, g := range prev.cloneOnly {
		oldGroupByID[g.GroupID] = g
	}

	for _, g := range cur.cloneOnly {
		claimants := targetClaimedBy[g.GroupID]
		if len(claimants) == 0 {
			lineageID := g.GroupID
			groupLineage[g.GroupID] = lineageID
			revs, days := groupBook.get(lineageID).observe(cur.revision.Date)
			result.GroupRows = append(result.GroupRows, groupRow(cur.revision.RevisionID, g, models.GroupBorn, "", nil, g.Size(), 0, revs, days))
			appendMembership(result, cur.revision.RevisionID, g, cur.groupSize, cur.blocksByID)
			continue
		}
		primary := pickPrimaryClaimant(claimants)
		oldGroup := oldGroupByID[primary.SourceGroupID]
		lineageID := prevGroupLineage[primary.SourceGroupID]
		if lineageID == "" {
			lineageID = primary.SourceGroupID
		}
		groupLineage[g.GroupID] = lineageID
		revs, days := groupBook.get(lineageID).observe(cur.revision.Date)
		state := classify.ClassifyGroup(primary, e.cfg.GroupSizeTolerance)
		added, removed := memberDelta(oldGroup, g, oldToNew, targetToSource)
		ratio := primary.OverlapRatio
		result.GroupRows = append(result.GroupRows, groupRow(cur.revision.RevisionID, g, state, primary.SourceGroupID, &ratio, added, removed, revs, days))
		appendMembership(result, cur.revision.RevisionID, g, cur.groupSize, cur.blocksByID)
	}

	for _, g := range prev.cloneOnly {
		if matchedSource[g.GroupID] {
			continue
		}
		lineageID := prevGroupLineage[g.GroupID]
		if lineageID == "" {
			lineageID = g.GroupID
		}
		revs, days := groupBook.get(lineageID).snapshot()
		result.GroupRows = append(result.GroupRows, groupRow(cur.revision.RevisionID, g, models.GroupDissolved, "", nil, 0, g.Size(), revs, days))
	}

	return methodLineage, groupLineage, nil
}

// pickPrimaryClaimant resolves a merge: when several source groups claim
// the same target, the lineage is inherited from the claimant with the
// largest overlap count, tie-broken by source group id.
func pickPrimaryClaimant(claimants []models.GroupMatch) models.GroupMatch {
	best := claimants[0]
	for _, c := range claimants[1:] {
		if c.OverlapCount > best.OverlapCount || (c.OverlapCount == best.OverlapCount && c.SourceGroupID < best.SourceGroupID) {
			best = c
		}
	}
	return best
}

func memberDelta(oldGroup, newGroup models.CloneGroup, oldToNew map[string]models.MethodMatch, targetToSource map[string]string) (added, removed int) {
	oldMembers := make(map[string]bool, len(oldGroup.Members))
	for _, m := range oldGroup.Members {
		oldMembers[m] = true
	}
	newMembers := make(map[string]bool, len(newGroup.Members))
	for _, m := range newGroup.Members {
		newMembers[m] = true
	}
	for _, m := range newGroup.Members {
		src, ok := targetToSource[m]
		if !ok || !oldMembers[src] {
			added++
		}
	}
	for _, m := range oldGroup.Members {
		mm := oldToNew[m]
		if mm.Type == models.MatchNone || !newMembers[mm.Target] {
			removed++
		}
	}
	return added, removed
}
