// ABOUTME: Single-predictor least squares fits.
// ABOUTME: Thin wrapper over gonum stat.LinearRegression and RSquared.
package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// LineFit is y = Alpha + Beta*x.
type LineFit struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
	R2    float64 `json:"r2" yaml:"r2"`
}

// At evaluates the fitted line.
func (f LineFit) At(x float64) float64 {
	return f.Alpha + f.Beta*x
}

// SimpleRegression fits an ordinary least squares line through (x, y).
func SimpleRegression(x, y []float64) (LineFit, error) {
	if len(x) != len(y) {
		return LineFit{}, fmt.Errorf("simple regression: length mismatch %d != %d", len(x), len(y))
	}
	if len(x) < 2 {
		return LineFit{}, fmt.Errorf("simple regression: need at least 2 points, got %d", len(x))
	}
	if IsConstant(x) {
		return LineFit{}, fmt.Errorf("simple regression: predictor is constant")
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return LineFit{
		Alpha: alpha,
		Beta:  beta,
		R2:    stat.RSquared(x, y, nil, alpha, beta),
	}, nil
}
