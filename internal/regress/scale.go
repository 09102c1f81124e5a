// ABOUTME: Column standardisation fitted on training rows only.
// ABOUTME: Wraps the scigo StandardScaler; constant columns map to zero.
package regress

import (
	"fmt"

	"github.com/YuminosukeSato/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// StandardScaler centres each column and scales it to unit population
// standard deviation. Std is zero for columns that were constant in the
// training rows.
type StandardScaler struct {
	Mean []float64
	Std  []float64

	sc *preprocessing.StandardScaler
}

// Fit learns per-column mean and standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errEmpty
	}
	p, err := checkXY(X, make([]float64, len(X)))
	if err != nil {
		return err
	}

	sc := preprocessing.NewStandardScaler(true, true)
	if err := sc.Fit(toDense(X, p)); err != nil {
		return fmt.Errorf("scaler: %w", err)
	}

	s.Mean = append([]float64(nil), sc.Mean...)
	s.Std = append([]float64(nil), sc.Scale...)
	for j := range s.Std {
		if isConstant(X, j) {
			s.Std[j] = 0
		}
	}
	s.sc = sc
	return nil
}

// Transform returns a standardised copy of X.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if s.sc == nil {
		return nil, ErrNotFitted
	}
	p := len(s.Mean)
	if err := checkPredict(X, p); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return [][]float64{}, nil
	}

	z, err := s.sc.Transform(toDense(X, p))
	if err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	out := fromDense(z)
	for j, sd := range s.Std {
		if sd == 0 {
			for i := range out {
				out[i][j] = 0
			}
		}
	}
	return out, nil
}

// FitTransform fits on X and returns the standardised copy.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func isConstant(X [][]float64, j int) bool {
	for i := 1; i < len(X); i++ {
		if X[i][j] != X[0][j] {
			return false
		}
	}
	return true
}

// toDense copies a row-major table into a gonum matrix with p columns.
func toDense(X [][]float64, p int) *mat.Dense {
	flat := make([]float64, 0, len(X)*p)
	for _, row := range X {
		flat = append(flat, row...)
	}
	return mat.NewDense(len(X), p, flat)
}

func fromDense(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
