// Package matching implements the two-phase cross-revision MethodMatcher
// from spec §4.5: an exact token_hash phase followed by an LSH-accelerated
// fuzzy phase with progressive thresholds, grounded on the two-phase
// exact/fuzzy structure of the example corpus's duplicate-code analyzer
// and its conc-pool worker model for cross-item parallelism.
package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/clonetrace/clonetrace/pkg/engine/lsh"
	"github.com/clonetrace/clonetrace/pkg/engine/similarity"
	"github.com/clonetrace/clonetrace/pkg/models"
)

// Matcher runs the MethodMatcher algorithm one way: source blocks against
// target blocks. Run it twice (swapping arguments) for bidirectional
// consistency, optionally sharing a Cache between the two runs.
type Matcher struct {
	cfg   Config
	cache *Cache
}

// Option configures a Matcher at construction.
type Option func(*Matcher)

// WithCache shares a similarity Cache across this Matcher and any other
// that is given the same Cache (typically the reverse-direction run).
func WithCache(c *Cache) Option {
	return func(m *Matcher) { m.cache = c }
}

// New returns a Matcher for cfg. cfg is validated immediately: invalid
// configuration is rejected before any matching work starts.
func New(cfg Config, opts ...Option) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, models.NewInvalidConfigError("matcher config", err)
	}
	m := &Matcher{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

type pairCandidate struct {
	sourceID string
	targetID string
	quick    int // cheap n-gram score used for top_k ranking
}

type scoredCandidate struct {
	targetID   string
	similarity int
}

// Match produces a mapping from every source block id to its MethodMatch
// against target. The mapping is injective on its successful entries: no
// target block id is claimed twice.
func (m *Matcher) Match(ctx context.Context, source, target []models.CodeBlock) (map[string]models.MethodMatch, error) {
	targetByID := make(map[string]models.CodeBlock, len(target))
	for _, t := range target {
		targetByID[t.BlockID] = t
	}

	matches := make(map[string]models.MethodMatch, len(source))
	claimedTarget := make(map[string]bool, len(target))

	// 1. Exact phase: token_hash -> first unclaimed target wins.
	hashToTarget := make(map[string]string, len(target))
	for _, t := range target {
		if _, ok := hashToTarget[t.TokenHash]; !ok {
			hashToTarget[t.TokenHash] = t.BlockID
		}
	}
	var unclaimedSource []models.CodeBlock
	for _, s := range source {
		if tid, ok := hashToTarget[s.TokenHash]; ok && !claimedTarget[tid] {
			matches[s.BlockID] = models.MethodMatch{Type: models.MatchExact, Target: tid, Similarity: 100}
			claimedTarget[tid] = true
			continue
		}
		unclaimedSource = append(unclaimedSource, s)
	}

	var unclaimedTarget []models.CodeBlock
	for _, t := range target {
		if !claimedTarget[t.BlockID] {
			unclaimedTarget = append(unclaimedTarget, t)
		}
	}

	if len(unclaimedSource) == 0 || len(unclaimedTarget) == 0 {
		for _, s := range unclaimedSource {
			matches[s.BlockID] = models.MethodMatch{Type: models.MatchNone}
		}
		return matches, nil
	}

	// 2. Fuzzy phase.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidatesBySource, err := m.generateCandidates(unclaimedSource, unclaimedTarget)
	if err != nil {
		return nil, err
	}

	scored, err := m.scoreCandidates(ctx, candidatesBySource, sourceByID(unclaimedSource), targetByID)
	if err != nil {
		return nil, err
	}

	fuzzyMatched := m.claimProgressive(ctx, scored, unclaimedSource, claimedTarget)
	for id, mm := range fuzzyMatched {
		matches[id] = mm
	}

	// 3. Everything still unclaimed is NONE.
	for _, s := range unclaimedSource {
		if _, ok := matches[s.BlockID]; !ok {
			matches[s.BlockID] = models.MethodMatch{Type: models.MatchNone}
		}
	}
	return matches, nil
}

func sourceByID(blocks []models.CodeBlock) map[string]models.CodeBlock {
	m := make(map[string]models.CodeBlock, len(blocks))
	for _, b := range blocks {
		m[b.BlockID] = b
	}
	return m
}

// generateCandidates builds, per source block id, the filtered list of
// target block ids worth scoring: LSH-restricted or exhaustive, then
// length-skip and Jaccard-prefiltered, then top_k-ranked when LSH is in
// use.
func (m *Matcher) generateCandidates(source, target []models.CodeBlock) (map[string][]string, error) {
	targetByID := sourceByID(target)

	var index *lsh.Index
	if m.cfg.UseLSH {
		index = lsh.NewIndex(lsh.Config{
			NumPermutations:  m.cfg.LSHNumPermutations,
			JaccardThreshold: m.cfg.LSHThreshold,
		})
		for _, t := range target {
			index.Insert(t.BlockID, t.TokenSequence)
		}
	}

	allTargetIDs := make([]string, len(target))
	for i, t := range target {
		allTargetIDs[i] = t.BlockID
	}

	result := make(map[string][]string, len(source))
	for _, s := range source {
		var raw []string
		if m.cfg.UseLSH {
			raw = index.Query(s.TokenSequence)
		} else {
			raw = allTargetIDs
		}

		filtered := make([]pairCandidate, 0, len(raw))
		for _, tid := range raw {
			t, ok := targetByID[tid]
			if !ok {
				continue
			}
			if m.lengthSkip(s, t) {
				continue
			}
			if m.jaccardBelowPrefilter(s, t) {
				continue
			}
			quick := similarity.Ngram(s.TokenSequence, t.TokenSequence, 2)
			filtered = append(filtered, pairCandidate{sourceID: s.BlockID, targetID: tid, quick: quick})
		}

		if m.cfg.UseLSH && m.cfg.TopK > 0 && len(filtered) > m.cfg.TopK {
			sort.SliceStable(filtered, func(i, j int) bool {
				if filtered[i].quick != filtered[j].quick {
					return filtered[i].quick > filtered[j].quick
				}
				return filtered[i].targetID < filtered[j].targetID
			})
			filtered = filtered[:m.cfg.TopK]
		}

		ids := make([]string, len(filtered))
		for i, f := range filtered {
			ids[i] = f.targetID
		}
		result[s.BlockID] = ids
	}
	return result, nil
}

func (m *Matcher) lengthSkip(a, b models.CodeBlock) bool {
	la, lb := len(a.TokenSequence), len(b.TokenSequence)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return false
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	ratio := float64(diff) / float64(maxLen)
	return ratio > m.cfg.LengthSkipRatio
}

func (m *Matcher) jaccardBelowPrefilter(a, b models.CodeBlock) bool {
	if m.cfg.JaccardPrefilter <= 0 {
		return false
	}
	sa := tokenSet(a.TokenSequence)
	sb := tokenSet(b.TokenSequence)
	if len(sa) == 0 && len(sb) == 0 {
		return false
	}
	inter, union := 0, 0
	seen := make(map[int]bool, len(sa)+len(sb))
	for t := range sa {
		seen[t] = true
		if sb[t] {
			inter++
		}
	}
	for t := range sb {
		if !seen[t] {
			seen[t] = true
		}
	}
	union = len(seen)
	if union == 0 {
		return false
	}
	return float64(inter)/float64(union) < m.cfg.JaccardPrefilter
}

func tokenSet(tokens []int) map[int]bool {
	s := make(map[int]bool, len(tokens))
	for _, t := range tokens {
		s[t] = true
	}
	return s
}

// scoreCandidates computes the combined similarity for every
// (source, candidate-target) pair, optionally in parallel chunks via a
// bounded conc pool, matching the coarse-grained task granularity called
// for in the concurrency model.
func (m *Matcher) scoreCandidates(ctx context.Context, bySource map[string][]string, sourceByID, targetByID map[string]models.CodeBlock) (map[string][]scoredCandidate, error) {
	type job struct {
		sourceID string
		targetID string
	}
	var jobs []job
	totalPairs := 0
	for sid, targets := range bySource {
		for _, tid := range targets {
			jobs = append(jobs, job{sourceID: sid, targetID: tid})
		}
		totalPairs += len(targets)
	}

	results := make([]int, len(jobs))
	compute := func(j job) int {
		s := sourceByID[j.sourceID]
		t := targetByID[j.targetID]
		if v, ok := m.cache.get(j.sourceID, j.targetID); ok {
			return v
		}
		sim := similarity.Combined(s.TokenSequence, t.TokenSequence, m.minThreshold(), m.cfg.BandedLCS)
		m.cache.put(j.sourceID, j.targetID, sim)
		return sim
	}

	if m.shouldParallelize(len(sourceByID), len(targetByID)) && len(jobs) > 0 {
		chunkSize := chunkSizeFor(len(jobs), m.cfg.MaxWorkers)
		p := pool.New().WithMaxGoroutines(maxInt(1, m.cfg.MaxWorkers))
		for start := 0; start < len(jobs); start += chunkSize {
			end := start + chunkSize
			if end > len(jobs) {
				end = len(jobs)
			}
			start, end := start, end
			p.Go(func() {
				for i := start; i < end; i++ {
					results[i] = compute(jobs[i])
				}
			})
		}
		p.Wait()
	} else {
		for i, j := range jobs {
			results[i] = compute(j)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]scoredCandidate, len(bySource))
	for i, j := range jobs {
		out[j.sourceID] = append(out[j.sourceID], scoredCandidate{targetID: j.targetID, similarity: results[i]})
	}
	return out, nil
}

func (m *Matcher) minThreshold() int {
	passes := m.cfg.thresholdPasses()
	return passes[len(passes)-1]
}

func (m *Matcher) shouldParallelize(numSource, numTarget int) bool {
	switch m.cfg.Parallel {
	case ParallelOn:
		return true
	case ParallelOff:
		return false
	default:
		return numSource*numTarget >= m.cfg.ParallelMinPairs
	}
}

func chunkSizeFor(numJobs, workers int) int {
	if workers <= 0 {
		workers = 1
	}
	size := numJobs / (workers * 4)
	if size < 200 {
		size = 200
	}
	if size > numJobs {
		size = numJobs
	}
	return size
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// claimProgressive runs the ordered threshold passes, claiming at most one
// target per source per pass and removing claimed sources/targets from
// subsequent passes. Ties are broken by highest similarity, then smallest
// target block id.
func (m *Matcher) claimProgressive(ctx context.Context, scored map[string][]scoredCandidate, unclaimedSource []models.CodeBlock, claimedTarget map[string]bool) map[string]models.MethodMatch {
	out := make(map[string]models.MethodMatch)

	sourceOrder := make([]string, len(unclaimedSource))
	for i, s := range unclaimedSource {
		sourceOrder[i] = s.BlockID
	}
	sort.Strings(sourceOrder)

	resolved := make(map[string]bool, len(sourceOrder))

	for _, threshold := range m.cfg.thresholdPasses() {
		if ctx.Err() != nil {
			break
		}
		for _, sid := range sourceOrder {
			if resolved[sid] {
				continue
			}
			candidates := scored[sid]
			bestTarget := ""
			bestSim := -1
			for _, c := range candidates {
				if claimedTarget[c.targetID] {
					continue
				}
				if c.similarity < threshold {
					continue
				}
				if c.similarity > bestSim || (c.similarity == bestSim && c.targetID < bestTarget) {
					bestSim = c.similarity
					bestTarget = c.targetID
				}
			}
			if bestTarget != "" {
				out[sid] = models.MethodMatch{Type: models.MatchFuzzy, Target: bestTarget, Similarity: bestSim}
				claimedTarget[bestTarget] = true
				resolved[sid] = true
			}
		}
	}
	return out
}

// MatchBidirectional runs Match in both directions, sharing a Cache, for
// callers that need both mappings. The tracker does not call it: it runs
// Match only in the old->new direction and derives lineage from that one
// mapping.
func MatchBidirectional(ctx context.Context, cfg Config, a, b []models.CodeBlock) (aToB, bToA map[string]models.MethodMatch, err error) {
	cache := NewCache()
	mAB, err := New(cfg, WithCache(cache))
	if err != nil {
		return nil, nil, fmt.Errorf("build forward matcher: %w", err)
	}
	mBA, err := New(cfg, WithCache(cache))
	if err != nil {
		return nil, nil, fmt.Errorf("build backward matcher: %w", err)
	}
	aToB, err = mAB.Match(ctx, a, b)
	if err != nil {
		return nil, nil, err
	}
	bToA, err = mBA.Match(ctx, b, a)
	if err != nil {
		return nil, nil, err
	}
	return aToB, bToA, nil
}
