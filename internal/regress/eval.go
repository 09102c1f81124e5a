// ABOUTME: Model scoring on a chronological holdout and on walk-forward folds.
// ABOUTME: A model that fails to fit is reported with its error, not dropped.
package regress

import (
	"fmt"

	"github.com/harperreed/focus/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Score is one model's holdout performance.
type Score struct {
	Model  string  `json:"model" yaml:"model"`
	R2     float64 `json:"r2" yaml:"r2"`
	MAE    float64 `json:"mae" yaml:"mae"`
	RMSE   float64 `json:"rmse" yaml:"rmse"`
	TrainN int     `json:"train_n" yaml:"train_n"`
	TestN  int     `json:"test_n" yaml:"test_n"`
	Err    string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the model was scored.
func (s Score) OK() bool { return s.Err == "" }

// CVScore summarises R² across walk-forward folds.
type CVScore struct {
	Model  string    `json:"model" yaml:"model"`
	Folds  int       `json:"folds" yaml:"folds"`
	MeanR2 float64   `json:"mean_r2" yaml:"mean_r2"`
	StdR2  float64   `json:"std_r2" yaml:"std_r2"`
	FoldR2 []float64 `json:"fold_r2" yaml:"fold_r2"`
	Err    string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether every fold was scored.
func (s CVScore) OK() bool { return s.Err == "" }

// Evaluate fits each model on the training rows of split and scores it on
// the test rows. Models are left fitted on the training rows.
func Evaluate(models []Regressor, X [][]float64, y []float64, split dataset.Split) ([]Score, error) {
	if len(split.Train) == 0 || len(split.Test) == 0 {
		return nil, fmt.Errorf("evaluate: empty train or test set")
	}
	Xtr, ytr := take(X, y, split.Train)
	Xte, yte := take(X, y, split.Test)

	scores := make([]Score, len(models))
	for i, m := range models {
		s := Score{Model: m.Name(), TrainN: len(ytr), TestN: len(yte)}
		pred, err := fitPredict(m, Xtr, ytr, Xte)
		if err != nil {
			s.Err = err.Error()
		} else {
			s.R2 = R2(yte, pred)
			s.MAE = MAE(yte, pred)
			s.RMSE = RMSE(yte, pred)
		}
		scores[i] = s
	}
	return scores, nil
}

// CrossValidate scores each model on every fold and reports mean and
// standard deviation of R².
func CrossValidate(models []Regressor, X [][]float64, y []float64, folds []dataset.Split) ([]CVScore, error) {
	if len(folds) == 0 {
		return nil, fmt.Errorf("cross-validate: no folds")
	}
	out := make([]CVScore, len(models))
	for i, m := range models {
		cv := CVScore{Model: m.Name(), Folds: len(folds)}
		for k, split := range folds {
			Xtr, ytr := take(X, y, split.Train)
			Xte, yte := take(X, y, split.Test)
			pred, err := fitPredict(m, Xtr, ytr, Xte)
			if err != nil {
				cv.Err = fmt.Sprintf("fold %d: %v", k+1, err)
				cv.FoldR2 = nil
				break
			}
			cv.FoldR2 = append(cv.FoldR2, R2(yte, pred))
		}
		if cv.OK() {
			cv.MeanR2, cv.StdR2 = stat.MeanStdDev(cv.FoldR2, nil)
			if len(cv.FoldR2) == 1 {
				cv.StdR2 = 0
			}
		}
		out[i] = cv
	}
	return out, nil
}

// Best returns the index of the highest-R² scored model, or -1.
func Best(scores []Score) int {
	best := -1
	for i, s := range scores {
		if !s.OK() {
			continue
		}
		if best < 0 || s.R2 > scores[best].R2 {
			best = i
		}
	}
	return best
}

func fitPredict(m Regressor, Xtr [][]float64, ytr []float64, Xte [][]float64) ([]float64, error) {
	if err := m.Fit(Xtr, ytr); err != nil {
		return nil, err
	}
	return m.Predict(Xte)
}

func take(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	Xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		Xs[i] = X[j]
		ys[i] = y[j]
	}
	return Xs, ys
}
