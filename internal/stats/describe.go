// ABOUTME: Descriptive statistics for numeric columns.
// ABOUTME: Wraps gonum/stat for moments and empirical quantiles.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for one column.
type Summary struct {
	Name   string  `json:"name" yaml:"name"`
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q25    float64 `json:"q25" yaml:"q25"`
	Median float64 `json:"median" yaml:"median"`
	Q75    float64 `json:"q75" yaml:"q75"`
	Max    float64 `json:"max" yaml:"max"`
	Skew   float64 `json:"skew" yaml:"skew"`
}

// Describe computes a Summary. Std is the sample standard deviation.
func Describe(name string, xs []float64) Summary {
	s := Summary{Name: name, Count: len(xs)}
	if len(xs) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max, s.Skew = nan, nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	s.Mean, s.Std = stat.MeanStdDev(xs, nil)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = Quantile(sorted, 0.25)
	s.Median = Quantile(sorted, 0.5)
	s.Q75 = Quantile(sorted, 0.75)
	if s.Std > 0 {
		s.Skew = stat.Skew(xs, nil)
	}
	return s
}

// Quantile returns the p-quantile of sorted data, interpolating linearly
// between closest ranks so that Quantile(x, 0.5) is the usual median.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	rank := p * float64(n-1)
	lower := int(rank)
	if lower+1 >= n {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// IsConstant reports whether every value equals the first.
func IsConstant(xs []float64) bool {
	if len(xs) < 2 {
		return true
	}
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}
