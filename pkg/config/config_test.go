package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clonetrace/clonetrace/pkg/engine/matching"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCatchesOutOfRangeSimilarityThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.SimilarityThreshold = 200
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity_threshold")
}

func TestValidateCatchesOutOfRangeOverlapThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.OverlapThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidateCatchesBadParallelMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Match.Parallel = "sideways"
	assert.Error(t, cfg.Validate())
}

func TestValidateCatchesNonDecreasingProgressiveThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Match.ProgressiveThresholds = []int{70, 80}
	assert.Error(t, cfg.Validate())
}

func TestValidateJoinsMultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.SimilarityThreshold = -5
	cfg.LSH.NumPermutations = 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity_threshold")
	assert.Contains(t, err.Error(), "num_permutations")
}

func TestToTrackingConfigMapsFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.SimilarityThreshold = 80
	cfg.LSH.Enabled = true
	cfg.LSH.NumPermutations = 64

	tc := cfg.ToTrackingConfig()
	assert.Equal(t, 80, tc.Matching.SimilarityThreshold)
	assert.True(t, tc.Matching.UseLSH)
	assert.Equal(t, 64, tc.Matching.LSHNumPermutations)
	assert.Equal(t, matching.ParallelAuto, tc.Matching.Parallel)
}

func TestToTrackingConfigAppliesOptimiseLast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Optimise = true
	cfg.LSH.Enabled = false
	cfg.Match.BandedLCS = false

	tc := cfg.ToTrackingConfig()
	assert.True(t, tc.Matching.UseLSH)
	assert.True(t, tc.Matching.BandedLCS)
	assert.Equal(t, []int{90, 80, 70}, tc.Matching.ProgressiveThresholds)
}

func TestLoadOrDefaultWithNoPathReturnsDefault(t *testing.T) {
	cfg, err := LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	_, err := Load("config.ini")
	assert.Error(t, err)
}
