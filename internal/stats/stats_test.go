// ABOUTME: Tests for descriptive statistics, correlations, and hypothesis tests.
// ABOUTME: Checks known closed-form values and degenerate inputs.
package stats

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	s := Describe("x", []float64{4, 1, 3, 2})

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 1.75, s.Q25, 1e-12)
	assert.InDelta(t, 3.25, s.Q75, 1e-12)
	assert.InDelta(t, 0, s.Skew, 1e-12)
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe("x", nil)
	assert.Equal(t, 0, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 3.0, Quantile(sorted, 0.5))
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 5.0, Quantile(sorted, 1))
	assert.InDelta(t, 2.0, Quantile(sorted, 0.25), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestPearsonSelfIsOne(t *testing.T) {
	x := []float64{7.1, 6.4, 8.0, 5.5, 7.7, 6.9}
	r, p, err := Pearson(x, x)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)
	assert.Less(t, p, 1e-6)
}

func TestPearsonKnownValue(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 5, 4, 5}
	r, p, err := Pearson(x, y)
	require.NoError(t, err)
	// r = 6 / sqrt(10 * 6)
	assert.InDelta(t, 6/math.Sqrt(60), r, 1e-12)
	assert.Greater(t, p, 0.05)
	assert.Less(t, p, 0.2)
}

func TestPearsonErrors(t *testing.T) {
	_, _, err := Pearson([]float64{1, 2, 3}, []float64{1, 2})
	assert.Error(t, err)

	_, _, err = Pearson([]float64{1, 2}, []float64{1, 2})
	assert.Error(t, err)

	r, _, err := Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r))
}

func TestSpearmanMonotonic(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 4, 9, 16, 25}
	rho, err := Spearman(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rho, 1e-12)
}

func TestRanksTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, Ranks([]float64{10, 20, 20, 30}))
}

func TestCorrelationMatrixDiagonal(t *testing.T) {
	names := []string{"a", "b", "flat"}
	cols := [][]float64{
		{1, 2, 3, 4, 5},
		{5, 3, 4, 1, 2},
		{2, 2, 2, 2, 2},
	}
	m, err := CorrelationMatrix(names, cols)
	require.NoError(t, err)

	assert.Equal(t, 1.0, m.Values[0][0])
	assert.Equal(t, 1.0, m.Values[1][1])
	assert.True(t, math.IsNaN(m.Values[2][2]))
	assert.Equal(t, m.Values[0][1], m.Values[1][0])
	assert.InDelta(t, -0.8, m.At("a", "b"), 1e-12)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), "null")
}

func TestRankCorrelatesOrdersByStrength(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 6}
	names := []string{"weak", "strong", "flat"}
	cols := [][]float64{
		{3, 1, 4, 1, 5, 2},
		{6, 5, 4, 3, 2, 1},
		{0, 0, 0, 0, 0, 0},
	}
	out, err := RankCorrelates("y", y, names, cols)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "strong", out[0].Feature)
	assert.InDelta(t, -1.0, out[0].R, 1e-12)
	assert.Equal(t, "flat", out[2].Feature)
	assert.True(t, out[2].Constant)
	assert.False(t, out[2].Significant(0.05))
}

func TestStrongPairs(t *testing.T) {
	m := &Matrix{
		Names: []string{"a", "b", "c"},
		Values: [][]float64{
			{1, 0.9, -0.75},
			{0.9, 1, 0.1},
			{-0.75, 0.1, 1},
		},
	}
	pairs := m.StrongPairs(0.7)
	require.Len(t, pairs, 2)
	assert.Equal(t, "b", pairs[0].Target)
	assert.Equal(t, -0.75, pairs[1].R)
}

func TestWelchTTest(t *testing.T) {
	a := Group{Label: "on", Values: []float64{5, 6, 7, 6, 5, 6}}
	b := Group{Label: "off", Values: []float64{8, 9, 8, 9, 10, 9}}

	res, err := WelchTTest("focus by cycle", a, b)
	require.NoError(t, err)
	assert.Less(t, res.Statistic, 0.0)
	assert.Less(t, res.P, 0.001)
	assert.InDelta(t, 35.0/6, res.GroupMeans["on"], 1e-12)
	assert.Equal(t, 6, res.GroupSizes["off"])
	assert.True(t, res.Significant(0.05))
	assert.Less(t, res.EffectSize, 0.0)
}

func TestWelchTTestIdenticalGroups(t *testing.T) {
	a := Group{Label: "a", Values: []float64{1, 2, 3, 4}}
	res, err := WelchTTest("same", a, Group{Label: "b", Values: []float64{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.InDelta(t, 1, res.P, 1e-9)
}

func TestWelchTTestDegenerate(t *testing.T) {
	_, err := WelchTTest("tiny", Group{Values: []float64{1}}, Group{Values: []float64{1, 2}})
	assert.Error(t, err)

	_, err = WelchTTest("flat", Group{Values: []float64{1, 1}}, Group{Values: []float64{2, 2}})
	assert.True(t, errors.Is(err, ErrZeroVariance))
}

func TestOneWayANOVA(t *testing.T) {
	groups := []Group{
		{Label: "mon", Values: []float64{4, 5, 6}},
		{Label: "tue", Values: []float64{5, 6, 7}},
		{Label: "sat", Values: []float64{8, 9, 10}},
		{Label: "sun"},
	}
	res, err := OneWayANOVA("focus by weekday", groups)
	require.NoError(t, err)

	// ssBetween = 26, ssWithin = 6, F = (26/2)/(6/6) = 13
	assert.InDelta(t, 13.0, res.Statistic, 1e-9)
	assert.Equal(t, 2.0, res.DF)
	assert.Equal(t, 6.0, res.DF2)
	assert.InDelta(t, 26.0/32.0, res.EffectSize, 1e-9)
	assert.Less(t, res.P, 0.05)
	assert.NotContains(t, res.GroupMeans, "sun")
}

func TestOneWayANOVAErrors(t *testing.T) {
	_, err := OneWayANOVA("one group", []Group{{Label: "a", Values: []float64{1, 2}}})
	assert.Error(t, err)
}

func TestSimpleRegression(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 3, 5, 7}
	fit, err := SimpleRegression(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fit.Alpha, 1e-12)
	assert.InDelta(t, 2.0, fit.Beta, 1e-12)
	assert.InDelta(t, 1.0, fit.R2, 1e-12)
	assert.InDelta(t, 9.0, fit.At(4), 1e-12)

	_, err = SimpleRegression([]float64{1, 1}, []float64{1, 2})
	assert.Error(t, err)
}

func TestSplitByMedian(t *testing.T) {
	low, high, median := SplitByMedian([]float64{1, 2, 3, 4}, []float64{10, 20, 30, 40})
	assert.Equal(t, 2.5, median)
	assert.Equal(t, []float64{10, 20}, low)
	assert.Equal(t, []float64{30, 40}, high)
}
