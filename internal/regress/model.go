// ABOUTME: Regressor interface shared by every model plus input validation.
// ABOUTME: NewSuite builds the standard set of models compared by the analysis.
package regress

import (
	"errors"
	"fmt"
)

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("model not fitted")

var errEmpty = errors.New("empty training set")

// Regressor is a supervised model for a continuous target.
type Regressor interface {
	Name() string
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// Importancer is implemented by models that expose native feature
// importances. Scores are non-negative and sum to 1 unless all are zero.
type Importancer interface {
	Importances() []float64
}

// SuiteOptions configures NewSuite.
type SuiteOptions struct {
	Seed       int64
	Trees      int
	MaxDepth   int
	Neighbors  int
	RidgeAlpha float64
}

// NewSuite returns the models compared by the analysis, baseline first.
func NewSuite(o SuiteOptions) []Regressor {
	return []Regressor{
		NewBaseline(),
		NewLinear(),
		NewRidge(o.RidgeAlpha),
		NewTree(WithMaxDepth(o.MaxDepth), WithMinSamplesLeaf(3), WithSeed(o.Seed)),
		NewForest(WithEstimators(o.Trees), WithForestMaxDepth(o.MaxDepth), WithForestSeed(o.Seed)),
		NewKNN(o.Neighbors),
	}
}

// checkXY validates a training set and returns its feature count.
func checkXY(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, errEmpty
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("X has %d rows but y has %d", len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return 0, errors.New("no features")
	}
	for i, row := range X {
		if len(row) != p {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
		}
	}
	return p, nil
}

func checkPredict(X [][]float64, p int) error {
	for i, row := range X {
		if len(row) != p {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
		}
	}
	return nil
}

func normalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if sum <= 0 {
		return out
	}
	for i, s := range scores {
		out[i] = s / sum
	}
	return out
}
