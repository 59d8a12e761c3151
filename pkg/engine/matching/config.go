package matching

import "fmt"

// ParallelMode selects whether the fuzzy-phase candidate evaluation runs
// concurrently.
type ParallelMode string

const (
	ParallelAuto ParallelMode = "auto"
	ParallelOn   ParallelMode = "on"
	ParallelOff  ParallelMode = "off"
)

// Config holds the MethodMatcher configuration from spec §4.5.
type Config struct {
	SimilarityThreshold   int
	LengthSkipRatio       float64
	JaccardPrefilter      float64
	BandedLCS             bool
	UseLSH                bool
	LSHNumPermutations    int
	LSHThreshold          float64
	TopK                  int
	ProgressiveThresholds []int
	Parallel              ParallelMode
	ParallelMinPairs      int
	MaxWorkers            int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 70,
		LengthSkipRatio:     0.3,
		JaccardPrefilter:    0.3,
		BandedLCS:           false,
		UseLSH:              false,
		LSHNumPermutations:  128,
		LSHThreshold:        0.5,
		TopK:                20,
		Parallel:            ParallelAuto,
		ParallelMinPairs:    100000,
		MaxWorkers:          8,
	}
}

// Validate rejects out-of-range configuration before any matching work
// starts, per spec §4.5/§7 (InvalidConfig is fatal before work begins).
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 100 {
		return fmt.Errorf("similarity_threshold %d out of range [0,100]", c.SimilarityThreshold)
	}
	if c.LengthSkipRatio < 0 {
		return fmt.Errorf("length_skip_ratio %f must be >= 0", c.LengthSkipRatio)
	}
	if c.JaccardPrefilter < 0 || c.JaccardPrefilter > 1 {
		return fmt.Errorf("jaccard_prefilter %f out of range [0,1]", c.JaccardPrefilter)
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k %d must be >= 0", c.TopK)
	}
	prev := 101
	for i, th := range c.ProgressiveThresholds {
		if th < 0 || th > 100 {
			return fmt.Errorf("progressive_thresholds[%d]=%d out of range [0,100]", i, th)
		}
		if th >= prev {
			return fmt.Errorf("progressive_thresholds must be strictly decreasing, got %v", c.ProgressiveThresholds)
		}
		prev = th
	}
	if len(c.ProgressiveThresholds) > 0 {
		last := c.ProgressiveThresholds[len(c.ProgressiveThresholds)-1]
		if last != c.SimilarityThreshold {
			return fmt.Errorf("final progressive threshold %d must equal similarity_threshold %d", last, c.SimilarityThreshold)
		}
	}
	switch c.Parallel {
	case ParallelAuto, ParallelOn, ParallelOff, "":
	default:
		return fmt.Errorf("parallel mode %q must be auto, on or off", c.Parallel)
	}
	return nil
}

// thresholdPasses returns the ordered list of thresholds to run, defaulting
// to a single pass at SimilarityThreshold when no progressive list is set.
func (c Config) thresholdPasses() []int {
	if len(c.ProgressiveThresholds) > 0 {
		return c.ProgressiveThresholds
	}
	return []int{c.SimilarityThreshold}
}
