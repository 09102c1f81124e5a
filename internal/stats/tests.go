// ABOUTME: Hypothesis tests: Welch two-sample t test and one-way ANOVA.
// ABOUTME: p-values come from gonum's Student t and F distributions.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrZeroVariance is returned when a test statistic is undefined because
// every group is constant.
var ErrZeroVariance = errors.New("zero variance within groups")

// TestResult is the outcome of a hypothesis test.
type TestResult struct {
	Name       string             `json:"name" yaml:"name"`
	Statistic  float64            `json:"statistic" yaml:"statistic"`
	DF         float64            `json:"df" yaml:"df"`
	DF2        float64            `json:"df2,omitempty" yaml:"df2,omitempty"`
	P          float64            `json:"p" yaml:"p"`
	EffectSize float64            `json:"effect_size" yaml:"effect_size"`
	GroupMeans map[string]float64 `json:"group_means" yaml:"group_means"`
	GroupSizes map[string]int     `json:"group_sizes" yaml:"group_sizes"`
}

// Significant reports whether p is below alpha.
func (t TestResult) Significant(alpha float64) bool {
	return !math.IsNaN(t.P) && t.P < alpha
}

// Group is a labelled sample.
type Group struct {
	Label  string
	Values []float64
}

// WelchTTest compares the means of two samples without assuming equal
// variances. EffectSize is Cohen's d using the pooled standard deviation.
func WelchTTest(name string, a, b Group) (TestResult, error) {
	na, nb := float64(len(a.Values)), float64(len(b.Values))
	if na < 2 || nb < 2 {
		return TestResult{}, fmt.Errorf("%s: each group needs at least 2 values (got %d and %d)",
			name, len(a.Values), len(b.Values))
	}

	ma, va := stat.MeanVariance(a.Values, nil)
	mb, vb := stat.MeanVariance(b.Values, nil)

	res := TestResult{
		Name:       name,
		GroupMeans: map[string]float64{a.Label: ma, b.Label: mb},
		GroupSizes: map[string]int{a.Label: len(a.Values), b.Label: len(b.Values)},
	}

	se2 := va/na + vb/nb
	if se2 == 0 {
		return res, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	res.Statistic = (ma - mb) / math.Sqrt(se2)
	res.DF = se2 * se2 / ((va/na)*(va/na)/(na-1) + (vb/nb)*(vb/nb)/(nb-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.P = 2 * (1 - dist.CDF(math.Abs(res.Statistic)))

	pooled := math.Sqrt(((na-1)*va + (nb-1)*vb) / (na + nb - 2))
	if pooled > 0 {
		res.EffectSize = (ma - mb) / pooled
	}
	return res, nil
}

// OneWayANOVA tests whether all group means are equal. EffectSize is
// eta squared. Empty groups are ignored.
func OneWayANOVA(name string, groups []Group) (TestResult, error) {
	res := TestResult{
		Name:       name,
		GroupMeans: make(map[string]float64),
		GroupSizes: make(map[string]int),
	}

	var all []float64
	var used []Group
	for _, g := range groups {
		if len(g.Values) == 0 {
			continue
		}
		used = append(used, g)
		all = append(all, g.Values...)
	}
	k := len(used)
	n := len(all)
	if k < 2 {
		return res, fmt.Errorf("%s: need at least 2 non-empty groups, got %d", name, k)
	}
	if n <= k {
		return res, fmt.Errorf("%s: need more observations (%d) than groups (%d)", name, n, k)
	}

	grand := stat.Mean(all, nil)
	var ssBetween, ssWithin float64
	for _, g := range used {
		m := stat.Mean(g.Values, nil)
		res.GroupMeans[g.Label] = m
		res.GroupSizes[g.Label] = len(g.Values)
		ssBetween += float64(len(g.Values)) * (m - grand) * (m - grand)
		for _, v := range g.Values {
			ssWithin += (v - m) * (v - m)
		}
	}

	res.DF = float64(k - 1)
	res.DF2 = float64(n - k)
	if ssWithin == 0 {
		return res, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	msBetween := ssBetween / res.DF
	msWithin := ssWithin / res.DF2
	res.Statistic = msBetween / msWithin

	dist := distuv.F{D1: res.DF, D2: res.DF2}
	res.P = 1 - dist.CDF(res.Statistic)
	if total := ssBetween + ssWithin; total > 0 {
		res.EffectSize = ssBetween / total
	}
	return res, nil
}

// SplitByMedian partitions y by whether x is above the median of x.
func SplitByMedian(x, y []float64) (low, high []float64, median float64) {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	median = Quantile(sorted, 0.5)
	for i, v := range x {
		if v > median {
			high = append(high, y[i])
		} else {
			low = append(low, y[i])
		}
	}
	return low, high, median
}
