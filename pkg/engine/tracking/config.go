package tracking

import (
	"fmt"

	"github.com/clonetrace/clonetrace/pkg/engine/matching"
)

// Config is the full engine configuration surface from spec §6,
// composing the MethodMatcher configuration with the group-level
// thresholds the tracker itself owns.
type Config struct {
	Matching           matching.Config
	GroupThreshold     int     // minimum effective pair similarity used by GroupDetector, default 70
	OverlapThreshold   float64 // default 0.50
	GroupSizeTolerance float64 // default 0.10
	// LowMatchRateFloor triggers a WarningLowMatchRate when a revision
	// pair's matched-fraction of source blocks falls below it. 0 disables
	// the check.
	LowMatchRateFloor float64
}

// DefaultConfig returns the documented defaults for every field, with
// optimise=false.
func DefaultConfig() Config {
	return Config{
		Matching:           matching.DefaultConfig(),
		GroupThreshold:     70,
		OverlapThreshold:   0.50,
		GroupSizeTolerance: 0.10,
		LowMatchRateFloor:  0,
	}
}

// Optimise applies the "optimise" convenience flag from spec §6:
// use_lsh=true, banded_lcs=true, progressive_thresholds=[90,80,70].
func (c Config) Optimise() Config {
	c.Matching.UseLSH = true
	c.Matching.BandedLCS = true
	c.Matching.ProgressiveThresholds = []int{90, 80, 70}
	return c
}

// Validate rejects out-of-range configuration before any work starts.
func (c Config) Validate() error {
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching config: %w", err)
	}
	if c.GroupThreshold < 0 || c.GroupThreshold > 100 {
		return fmt.Errorf("group_threshold %d out of range [0,100]", c.GroupThreshold)
	}
	if c.OverlapThreshold < 0 || c.OverlapThreshold > 1 {
		return fmt.Errorf("overlap_threshold %f out of range [0,1]", c.OverlapThreshold)
	}
	if c.GroupSizeTolerance < 0 {
		return fmt.Errorf("group_size_tolerance %f must be >= 0", c.GroupSizeTolerance)
	}
	return nil
}
