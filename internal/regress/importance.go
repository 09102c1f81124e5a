// ABOUTME: Feature importance rankings, native and permutation based.
// ABOUTME: Permutation importance measures the R² lost when a column is shuffled.
package regress

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Importance is one feature's contribution to a fitted model.
type Importance struct {
	Feature string  `json:"feature" yaml:"feature"`
	Score   float64 `json:"score" yaml:"score"`
	Std     float64 `json:"std,omitempty" yaml:"std,omitempty"`
}

// Rank pairs names with scores and sorts by descending score. Ties keep
// the order of names.
func Rank(names []string, scores []float64) []Importance {
	out := make([]Importance, len(names))
	for i, n := range names {
		out[i] = Importance{Feature: n, Score: scores[i]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

// NativeImportance returns the model's own importance ranking, or false if
// the model has none.
func NativeImportance(m Regressor, names []string) ([]Importance, bool) {
	im, ok := m.(Importancer)
	if !ok {
		return nil, false
	}
	scores := im.Importances()
	if len(scores) != len(names) {
		return nil, false
	}
	return Rank(names, scores), true
}

// PermutationImportance scores each feature by the mean drop in R² on
// (X, y) over repeats random shuffles of that column. The model must
// already be fitted. The same seed always yields the same ranking.
func PermutationImportance(m Regressor, X [][]float64, y []float64, names []string, repeats int, seed int64) ([]Importance, error) {
	if len(X) == 0 {
		return nil, errEmpty
	}
	if len(names) != len(X[0]) {
		return nil, fmt.Errorf("permutation importance: %d names for %d features", len(names), len(X[0]))
	}
	if repeats < 1 {
		repeats = 1
	}

	pred, err := m.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("permutation importance: %w", err)
	}
	base := R2(y, pred)

	rng := rand.New(rand.NewSource(seed))
	shuffled := make([][]float64, len(X))
	for i := range X {
		shuffled[i] = append([]float64(nil), X[i]...)
	}

	out := make([]Importance, len(names))
	drops := make([]float64, repeats)
	for j, name := range names {
		for r := 0; r < repeats; r++ {
			perm := rng.Perm(len(X))
			for i := range shuffled {
				shuffled[i][j] = X[perm[i]][j]
			}
			p, err := m.Predict(shuffled)
			if err != nil {
				return nil, fmt.Errorf("permutation importance: %s: %w", name, err)
			}
			drops[r] = base - R2(y, p)
		}
		for i := range shuffled {
			shuffled[i][j] = X[i][j]
		}

		mean, std := stat.MeanStdDev(drops, nil)
		if repeats == 1 {
			std = 0
		}
		out[j] = Importance{Feature: name, Score: mean, Std: std}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out, nil
}
