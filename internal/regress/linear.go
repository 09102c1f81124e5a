// ABOUTME: Baseline mean predictor, ordinary least squares and ridge regression.
// ABOUTME: OLS is fitted by scigo; ridge by Cholesky on standardised inputs.
package regress

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/scigo/linear"
	scigolog "github.com/YuminosukeSato/scigo/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// scigo logs each fit to stdout at info level.
func init() { scigolog.SetupLogger("disabled") }

// Baseline predicts the training mean for every row. Any model worth
// reporting should beat it.
type Baseline struct {
	mean   float64
	p      int
	fitted bool
}

func NewBaseline() *Baseline { return &Baseline{} }

func (b *Baseline) Name() string { return "baseline" }

func (b *Baseline) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	b.mean = stat.Mean(y, nil)
	b.p = p
	b.fitted = true
	return nil
}

func (b *Baseline) Predict(X [][]float64) ([]float64, error) {
	if !b.fitted {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, b.p); err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	out := make([]float64, len(X))
	for i := range out {
		out[i] = b.mean
	}
	return out, nil
}

// Linear is ordinary least squares with an intercept, fitted by scigo.
// Columns that are constant in the training rows get a zero coefficient.
type Linear struct {
	Intercept float64
	Coef      []float64

	std    []float64
	fitted bool
}

func NewLinear() *Linear { return &Linear{} }

func (l *Linear) Name() string { return "linear" }

func (l *Linear) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("linear: %w", err)
	}
	n := len(X)

	var scaler StandardScaler
	if err := scaler.Fit(X); err != nil {
		return fmt.Errorf("linear: %w", err)
	}
	var active []int
	for j, sd := range scaler.Std {
		if sd > 0 {
			active = append(active, j)
		}
	}
	cols := len(active) + 1
	if n < cols {
		return fmt.Errorf("linear: need at least %d rows for %d coefficients, got %d", cols, cols, n)
	}

	l.Coef = make([]float64, p)
	l.std = scaler.Std
	if len(active) == 0 {
		l.Intercept = stat.Mean(y, nil)
		l.fitted = true
		return nil
	}

	design := mat.NewDense(n, len(active), nil)
	for i := range X {
		for k, j := range active {
			design.Set(i, k, X[i][j])
		}
	}
	ols := linear.NewLinearRegression()
	if err := ols.Fit(design, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("linear: %w", err)
	}

	l.Intercept = ols.GetIntercept()
	for k, w := range ols.GetWeights() {
		l.Coef[active[k]] = w
	}
	l.fitted = true
	return nil
}

func (l *Linear) Predict(X [][]float64) ([]float64, error) {
	if !l.fitted {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, len(l.Coef)); err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = l.Intercept + mat.Dot(mat.NewVecDense(len(row), row), mat.NewVecDense(len(l.Coef), l.Coef))
	}
	return out, nil
}

// StandardizedCoefficients returns each coefficient multiplied by the
// training standard deviation of its feature.
func (l *Linear) StandardizedCoefficients() []float64 {
	out := make([]float64, len(l.Coef))
	for j, c := range l.Coef {
		out[j] = c * l.std[j]
	}
	return out
}

// Importances ranks features by absolute standardised coefficient.
func (l *Linear) Importances() []float64 {
	return absNormalize(l.StandardizedCoefficients())
}

// Ridge is L2-penalised least squares on standardised features. The
// intercept is the training mean of y and is not penalised.
type Ridge struct {
	Alpha     float64
	Intercept float64
	Coef      []float64 // in standardised units

	scaler StandardScaler
	fitted bool
}

func NewRidge(alpha float64) *Ridge {
	if alpha <= 0 {
		alpha = 1
	}
	return &Ridge{Alpha: alpha}
}

func (r *Ridge) Name() string { return "ridge" }

func (r *Ridge) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("ridge: %w", err)
	}
	Z, err := r.scaler.FitTransform(X)
	if err != nil {
		return fmt.Errorf("ridge: %w", err)
	}
	n := len(Z)

	flat := make([]float64, 0, n*p)
	for _, row := range Z {
		flat = append(flat, row...)
	}
	z := mat.NewDense(n, p, flat)

	r.Intercept = stat.Mean(y, nil)
	centered := make([]float64, n)
	for i, v := range y {
		centered[i] = v - r.Intercept
	}

	var gram mat.SymDense
	gram.SymOuterK(1, z.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.Alpha)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return fmt.Errorf("ridge: normal equations are not positive definite")
	}

	var rhs mat.VecDense
	rhs.MulVec(z.T(), mat.NewVecDense(n, centered))
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		return fmt.Errorf("ridge: solve: %w", err)
	}

	r.Coef = make([]float64, p)
	for j := range r.Coef {
		r.Coef[j] = beta.AtVec(j)
	}
	r.fitted = true
	return nil
}

func (r *Ridge) Predict(X [][]float64) ([]float64, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}
	Z, err := r.scaler.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("ridge: %w", err)
	}
	out := make([]float64, len(Z))
	for i, row := range Z {
		v := r.Intercept
		for j, c := range r.Coef {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}

// Importances ranks features by absolute standardised coefficient.
func (r *Ridge) Importances() []float64 {
	return absNormalize(r.Coef)
}

func absNormalize(xs []float64) []float64 {
	abs := make([]float64, len(xs))
	for i, v := range xs {
		abs[i] = math.Abs(v)
	}
	return normalize(abs)
}
