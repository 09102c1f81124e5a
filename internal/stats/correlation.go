// ABOUTME: Pearson and Spearman correlation with significance tests.
// ABOUTME: Builds correlation matrices and ranks features against a target.
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation is a pairwise association between a feature and a target.
type Correlation struct {
	Feature  string  `json:"feature" yaml:"feature"`
	Target   string  `json:"target" yaml:"target"`
	N        int     `json:"n" yaml:"n"`
	R        float64 `json:"r" yaml:"r"`
	P        float64 `json:"p" yaml:"p"`
	Spearman float64 `json:"spearman" yaml:"spearman"`
	Constant bool    `json:"constant,omitempty" yaml:"constant,omitempty"`
}

// Significant reports whether the Pearson p-value is below alpha.
func (c Correlation) Significant(alpha float64) bool {
	return !c.Constant && c.P < alpha
}

// Pearson returns the correlation coefficient of x and y with the two-sided
// p-value from a Student t test on n-2 degrees of freedom.
func Pearson(x, y []float64) (r, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("pearson: length mismatch %d != %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return 0, 0, fmt.Errorf("pearson: need at least 3 points, got %d", n)
	}
	if IsConstant(x) || IsConstant(y) {
		return math.NaN(), math.NaN(), nil
	}

	r = stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))
	return r, correlationP(r, n), nil
}

func correlationP(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// Spearman returns the rank correlation of x and y. Ties share their
// average rank.
func Spearman(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("spearman: length mismatch %d != %d", len(x), len(y))
	}
	if IsConstant(x) || IsConstant(y) {
		return math.NaN(), nil
	}
	r := stat.Correlation(Ranks(x), Ranks(y), nil)
	return math.Max(-1, math.Min(1, r)), nil
}

// Ranks returns 1-based fractional ranks.
func Ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Correlate computes Pearson and Spearman for one feature/target pair.
func Correlate(feature string, x []float64, target string, y []float64) (Correlation, error) {
	c := Correlation{Feature: feature, Target: target, N: len(x)}
	r, p, err := Pearson(x, y)
	if err != nil {
		return c, fmt.Errorf("%s vs %s: %w", feature, target, err)
	}
	if math.IsNaN(r) {
		// Undefined for a constant column: report no association.
		c.Constant = true
		c.P = 1
		return c, nil
	}
	rho, err := Spearman(x, y)
	if err != nil {
		return c, fmt.Errorf("%s vs %s: %w", feature, target, err)
	}
	c.R, c.P, c.Spearman = r, p, rho
	return c, nil
}

// RankCorrelates correlates every column with the target and sorts by
// descending |r|. Constant columns sort last.
func RankCorrelates(target string, y []float64, names []string, cols [][]float64) ([]Correlation, error) {
	out := make([]Correlation, 0, len(names))
	for i, name := range names {
		c, err := Correlate(name, cols[i], target, y)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Constant != out[j].Constant {
			return !out[i].Constant
		}
		return math.Abs(out[i].R) > math.Abs(out[j].R)
	})
	return out, nil
}

// Matrix is a symmetric correlation matrix.
type Matrix struct {
	Names  []string    `json:"names" yaml:"names"`
	Values [][]float64 `json:"values" yaml:"values"`
}

// MarshalJSON encodes undefined correlations as null.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(struct {
		Names  []string     `json:"names"`
		Values [][]*float64 `json:"values"`
	}{m.Names, values})
}

// At returns the correlation between two named columns.
func (m *Matrix) At(a, b string) float64 {
	i, j := -1, -1
	for k, n := range m.Names {
		if n == a {
			i = k
		}
		if n == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}

// CorrelationMatrix computes all pairwise Pearson correlations.
// The diagonal is exactly 1 for non-constant columns and NaN otherwise.
func CorrelationMatrix(names []string, cols [][]float64) (*Matrix, error) {
	k := len(cols)
	if len(names) != k {
		return nil, fmt.Errorf("correlation matrix: %d names for %d columns", len(names), k)
	}
	values := make([][]float64, k)
	for i := range values {
		values[i] = make([]float64, k)
	}

	for i := 0; i < k; i++ {
		constI := IsConstant(cols[i])
		if constI {
			values[i][i] = math.NaN()
		} else {
			values[i][i] = 1
		}
		for j := i + 1; j < k; j++ {
			if len(cols[i]) != len(cols[j]) {
				return nil, fmt.Errorf("correlation matrix: %s and %s differ in length", names[i], names[j])
			}
			r := math.NaN()
			if !constI && !IsConstant(cols[j]) {
				r = math.Max(-1, math.Min(1, stat.Correlation(cols[i], cols[j], nil)))
			}
			values[i][j], values[j][i] = r, r
		}
	}

	return &Matrix{Names: names, Values: values}, nil
}

// StrongPairs returns feature pairs with |r| at or above threshold,
// strongest first.
func (m *Matrix) StrongPairs(threshold float64) []Correlation {
	var out []Correlation
	for i := range m.Names {
		for j := i + 1; j < len(m.Names); j++ {
			r := m.Values[i][j]
			if !math.IsNaN(r) && math.Abs(r) >= threshold {
				out = append(out, Correlation{Feature: m.Names[i], Target: m.Names[j], R: r})
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return math.Abs(out[a].R) > math.Abs(out[b].R) })
	return out
}
