// ABOUTME: k-nearest-neighbours regression on standardised features.
// ABOUTME: Predicts the mean target of the k closest training rows.
package regress

import (
	"fmt"
	"sort"
)

// KNN is a lazy learner: Fit stores the scaled training rows.
type KNN struct {
	K int

	scaler StandardScaler
	X      [][]float64
	y      []float64
}

// NewKNN creates a model that averages k neighbours.
func NewKNN(k int) *KNN {
	if k < 1 {
		k = 5
	}
	return &KNN{K: k}
}

func (m *KNN) Name() string { return "knn" }

func (m *KNN) Fit(X [][]float64, y []float64) error {
	if _, err := checkXY(X, y); err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	Z, err := m.scaler.FitTransform(X)
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	m.X = Z
	m.y = append([]float64(nil), y...)
	return nil
}

func (m *KNN) Predict(X [][]float64) ([]float64, error) {
	if m.X == nil {
		return nil, ErrNotFitted
	}
	Z, err := m.scaler.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("knn: %w", err)
	}
	out := make([]float64, len(Z))
	for i, row := range Z {
		out[i] = m.predictRow(row)
	}
	return out, nil
}

func (m *KNN) predictRow(x []float64) float64 {
	type neighbour struct {
		d float64
		v float64
	}
	nbrs := make([]neighbour, len(m.X))
	for j, xj := range m.X {
		nbrs[j] = neighbour{d: euclidSquared(x, xj), v: m.y[j]}
	}
	sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })

	k := min(m.K, len(nbrs))
	sum := 0.0
	for _, nb := range nbrs[:k] {
		sum += nb.v
	}
	return sum / float64(k)
}

// euclidSquared skips the square root since only the ordering matters.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
