package dsp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// Median returns the median of values, averaging the two middle elements
// for even lengths. ok is false for an empty input.
func Median(values []float64) (median float64, ok bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
