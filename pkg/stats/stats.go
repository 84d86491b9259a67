// Package stats provides summary statistics and rank utilities for growth analysis.
package stats

import (
	"math"
	"sort"
)

// PercentileLevels are the ranks reported by ExtractSummaryStatistics.
var PercentileLevels = [5]float64{0.05, 0.25, 0.50, 0.75, 0.95}

// SummaryStatistics describes the spread of an unordered sample.
type SummaryStatistics struct {
	Min         float64    `json:"min"`
	Max         float64    `json:"max"`
	Percentiles [5]float64 `json:"percentiles"` // at PercentileLevels
	Count       int        `json:"count"`
	// Valid is false when the sample is too small to interpolate
	// percentiles (fewer than two points).
	Valid bool `json:"valid"`
}

// Percentile returns the p-th quantile (0 <= p <= 1) of a sorted slice by
// linear interpolation between the order statistics bracketing the
// fractional index p*(n-1).
// The slice must already be sorted in ascending order.
// Returns NaN if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// ExtractSummaryStatistics computes min, max and the PercentileLevels
// percentiles of data. The input is not modified.
//
// A single point populates every field with that value but is reported as
// not valid. An empty sample returns the zero value.
func ExtractSummaryStatistics(data []float64) SummaryStatistics {
	if len(data) == 0 {
		return SummaryStatistics{}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	s := SummaryStatistics{
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
		Valid: len(sorted) > 1,
	}
	for i, p := range PercentileLevels {
		s.Percentiles[i] = Percentile(sorted, p)
	}
	return s
}

// MapToPercentiles returns the normalized rank (0 to 1) of each element of x
// among all elements. Ties keep their original relative order. A single
// element maps to 0.
func MapToPercentiles(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return x[idx[a]] < x[idx[b]]
	})

	ranks := make([]float64, n)
	if n == 1 {
		return ranks
	}
	for rank, i := range idx {
		ranks[i] = float64(rank) / float64(n-1)
	}
	return ranks
}
