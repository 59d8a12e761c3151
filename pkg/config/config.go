// Package config loads and validates the engine configuration surface
// from spec §6, grounded on the layered koanf-based configuration loader
// used throughout the example corpus: nested structs tagged for koanf,
// extension-based parser dispatch, and an errors.Join-based Validate.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/clonetrace/clonetrace/pkg/engine/matching"
	"github.com/clonetrace/clonetrace/pkg/engine/tracking"
)

// AnalysisConfig holds the group-level thresholds from spec §6.
type AnalysisConfig struct {
	SimilarityThreshold int     `koanf:"similarity_threshold" toml:"similarity_threshold"`
	OverlapThreshold    float64 `koanf:"overlap_threshold" toml:"overlap_threshold"`
	GroupSizeTolerance  float64 `koanf:"group_size_tolerance" toml:"group_size_tolerance"`
	GroupThreshold      int     `koanf:"group_threshold" toml:"group_threshold"`
}

// LSHConfig holds the MinHash-LSH knobs from spec §4.3/§4.5.
type LSHConfig struct {
	Enabled         bool    `koanf:"use_lsh" toml:"use_lsh"`
	Threshold       float64 `koanf:"lsh_threshold" toml:"lsh_threshold"`
	NumPermutations int     `koanf:"lsh_num_permutations" toml:"lsh_num_permutations"`
	TopK            int     `koanf:"top_k" toml:"top_k"`
}

// MatchConfig holds the remaining MethodMatcher knobs from spec §4.5.
type MatchConfig struct {
	LengthSkipRatio       float64 `koanf:"length_skip_ratio" toml:"length_skip_ratio"`
	JaccardPrefilter      float64 `koanf:"jaccard_prefilter" toml:"jaccard_prefilter"`
	BandedLCS             bool    `koanf:"banded_lcs" toml:"banded_lcs"`
	ProgressiveThresholds []int   `koanf:"progressive_thresholds" toml:"progressive_thresholds"`
	Parallel              string  `koanf:"parallel" toml:"parallel"`
	ParallelMinPairs      int     `koanf:"parallel_min_pairs" toml:"parallel_min_pairs"`
	MaxWorkers            int     `koanf:"max_workers" toml:"max_workers"`
}

// DateRangeConfig holds the optional revision date-range bound, consumed
// by the revision source, not by the engine itself.
type DateRangeConfig struct {
	Start string `koanf:"start" toml:"start"`
	End   string `koanf:"end" toml:"end"`
}

// Config is the full configuration document. Optimise is the convenience
// flag from spec §6 that forces use_lsh/banded_lcs/progressive_thresholds
// to their optimised defaults.
type Config struct {
	Analysis  AnalysisConfig  `koanf:"analysis" toml:"analysis"`
	LSH       LSHConfig       `koanf:"lsh" toml:"lsh"`
	Match     MatchConfig     `koanf:"match" toml:"match"`
	DateRange DateRangeConfig `koanf:"date_range" toml:"date_range"`
	Optimise  bool            `koanf:"optimise" toml:"optimise"`
}

// DefaultConfig returns every documented default from spec §4.5/§6.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			SimilarityThreshold: 70,
			OverlapThreshold:    0.50,
			GroupSizeTolerance:  0.10,
			GroupThreshold:      70,
		},
		LSH: LSHConfig{
			Enabled:         false,
			Threshold:       0.5,
			NumPermutations: 128,
			TopK:            20,
		},
		Match: MatchConfig{
			LengthSkipRatio:  0.3,
			JaccardPrefilter: 0.3,
			BandedLCS:        false,
			Parallel:         string(matching.ParallelAuto),
			ParallelMinPairs: 100000,
			MaxWorkers:       8,
		},
	}
}

type loadOptions struct {
	path string
}

// LoadOption configures Load/LoadOrDefault.
type LoadOption func(*loadOptions)

// WithPath sets the file to load from.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// Load reads path (TOML, YAML or JSON, selected by extension), validates
// it against the configuration JSON Schema, unmarshals it over
// DefaultConfig, and runs struct-level Validate.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("config %s: schema validation: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault applies opts (currently just WithPath) and loads that
// path, or returns DefaultConfig() when no path was given.
func LoadOrDefault(opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.path == "" {
		return DefaultConfig(), nil
	}
	return Load(o.path)
}

// Validate collects every configuration violation and returns them joined,
// matching the corpus's errors.Join convention.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.SimilarityThreshold < 0 || c.Analysis.SimilarityThreshold > 100 {
		errs = append(errs, fmt.Errorf("analysis.similarity_threshold %d out of range [0,100]", c.Analysis.SimilarityThreshold))
	}
	if c.Analysis.OverlapThreshold < 0 || c.Analysis.OverlapThreshold > 1 {
		errs = append(errs, fmt.Errorf("analysis.overlap_threshold %f out of range [0,1]", c.Analysis.OverlapThreshold))
	}
	if c.Analysis.GroupSizeTolerance < 0 {
		errs = append(errs, fmt.Errorf("analysis.group_size_tolerance %f must be >= 0", c.Analysis.GroupSizeTolerance))
	}
	if c.Analysis.GroupThreshold < 0 || c.Analysis.GroupThreshold > 100 {
		errs = append(errs, fmt.Errorf("analysis.group_threshold %d out of range [0,100]", c.Analysis.GroupThreshold))
	}
	if c.LSH.NumPermutations < 32 || c.LSH.NumPermutations > 256 {
		errs = append(errs, fmt.Errorf("lsh.num_permutations %d out of range [32,256]", c.LSH.NumPermutations))
	}
	if c.LSH.Threshold < 0 || c.LSH.Threshold > 1 {
		errs = append(errs, fmt.Errorf("lsh.threshold %f out of range [0,1]", c.LSH.Threshold))
	}
	if c.Match.ParallelMinPairs < 0 {
		errs = append(errs, fmt.Errorf("match.parallel_min_pairs %d must be >= 0", c.Match.ParallelMinPairs))
	}
	switch c.Match.Parallel {
	case "auto", "on", "off", "":
	default:
		errs = append(errs, fmt.Errorf("match.parallel %q must be auto, on or off", c.Match.Parallel))
	}
	prev := 101
	for i, th := range c.Match.ProgressiveThresholds {
		if th < 0 || th > 100 {
			errs = append(errs, fmt.Errorf("match.progressive_thresholds[%d]=%d out of range [0,100]", i, th))
		}
		if th >= prev {
			errs = append(errs, fmt.Errorf("match.progressive_thresholds must be strictly decreasing"))
			break
		}
		prev = th
	}
	return errors.Join(errs...)
}

// ToTrackingConfig maps the document onto the engine's runtime
// configuration types, applying the Optimise convenience flag last so it
// overrides any conflicting explicit settings, per spec §6.
func (c *Config) ToTrackingConfig() tracking.Config {
	progressive := c.Match.ProgressiveThresholds
	matchCfg := matching.Config{
		SimilarityThreshold:   c.Analysis.SimilarityThreshold,
		LengthSkipRatio:       c.Match.LengthSkipRatio,
		JaccardPrefilter:      c.Match.JaccardPrefilter,
		BandedLCS:             c.Match.BandedLCS,
		UseLSH:                c.LSH.Enabled,
		LSHNumPermutations:    c.LSH.NumPermutations,
		LSHThreshold:          c.LSH.Threshold,
		TopK:                  c.LSH.TopK,
		ProgressiveThresholds: progressive,
		Parallel:              matching.ParallelMode(c.Match.Parallel),
		ParallelMinPairs:      c.Match.ParallelMinPairs,
		MaxWorkers:            c.Match.MaxWorkers,
	}
	trackCfg := tracking.Config{
		Matching:           matchCfg,
		GroupThreshold:     c.Analysis.GroupThreshold,
		OverlapThreshold:   c.Analysis.OverlapThreshold,
		GroupSizeTolerance: c.Analysis.GroupSizeTolerance,
	}
	if c.Optimise {
		trackCfg = trackCfg.Optimise()
	}
	return trackCfg
}
