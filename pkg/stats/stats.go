// Package stats provides small aggregate helpers used by the clone-group
// similarity metrics in pkg/models, backed by gonum's stat and floats
// packages rather than hand-rolled arithmetic.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of vals, or 0 for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// StdDev returns the population-adjacent sample standard deviation of
// vals, or 0 when there are fewer than two values.
func StdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.StdDev(vals, nil)
}

// Percentile returns the p-th percentile (0-100) of vals using gonum's
// empirical quantile, which picks a sample value without interpolating
// between ranks. vals is sorted in place.
func Percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	if len(vals) == 1 {
		return vals[0]
	}
	return stat.Quantile(p/100.0, stat.Empirical, vals, nil)
}

// IntMean is a convenience wrapper around Mean for integer samples,
// matching the integer-valued similarity scores used throughout the
// clone-group metrics.
func IntMean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	return Mean(toFloats(vals))
}

// IntMin and IntMax return the extrema of an integer sample, rounded from
// gonum's floats.Min/Max, or false for an empty slice.
func IntMin(vals []int) (int, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	return int(floats.Min(toFloats(vals))), true
}

func IntMax(vals []int) (int, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	return int(floats.Max(toFloats(vals))), true
}

func toFloats(vals []int) []float64 {
	fvals := make([]float64, len(vals))
	for i, v := range vals {
		fvals[i] = float64(v)
	}
	return fvals
}
