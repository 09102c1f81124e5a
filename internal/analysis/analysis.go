// ABOUTME: The end-to-end analysis: describe, correlate, test, model, summarise.
// ABOUTME: Run returns a Report that the report package renders.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/regress"
	"github.com/harperreed/focus/internal/stats"
)

// MinPairs is the fewest next-day pairs worth modelling.
const MinPairs = 10

// TargetName labels the next-day focus target in correlations and tests.
const TargetName = "next_day_focus"

// Report is the complete result of a run.
type Report struct {
	GeneratedAt     time.Time           `json:"generated_at" yaml:"generated_at"`
	Summary         Summary             `json:"summary" yaml:"summary"`
	Descriptives    []stats.Summary     `json:"descriptives" yaml:"descriptives"`
	Correlations    *stats.Matrix       `json:"correlations" yaml:"correlations"`
	StrongPairs     []stats.Correlation `json:"strong_pairs,omitempty" yaml:"strong_pairs,omitempty"`
	SameDay         []stats.Correlation `json:"same_day" yaml:"same_day"`
	NextDay         []stats.Correlation `json:"next_day" yaml:"next_day"`
	Tests           []stats.TestResult  `json:"tests" yaml:"tests"`
	Holdout         []regress.Score     `json:"holdout" yaml:"holdout"`
	CrossValidation []regress.CVScore   `json:"cross_validation" yaml:"cross_validation"`
	BestModel       string              `json:"best_model,omitempty" yaml:"best_model,omitempty"`
	Importances     []ModelImportance   `json:"importances" yaml:"importances"`
	Findings        []string            `json:"findings" yaml:"findings"`
	Warnings        []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Summary describes the data the report was computed from.
type Summary struct {
	Rows         int       `json:"rows" yaml:"rows"`
	Pairs        int       `json:"pairs" yaml:"pairs"`
	Start        time.Time `json:"start" yaml:"start"`
	End          time.Time `json:"end" yaml:"end"`
	Features     []string  `json:"features" yaml:"features"`
	TrainPairs   int       `json:"train_pairs" yaml:"train_pairs"`
	TestPairs    int       `json:"test_pairs" yaml:"test_pairs"`
	TestFrom     time.Time `json:"test_from" yaml:"test_from"`
	Folds        int       `json:"folds" yaml:"folds"`
	Alpha        float64   `json:"alpha" yaml:"alpha"`
	TestFraction float64   `json:"test_fraction" yaml:"test_fraction"`
	Seed         int64     `json:"seed" yaml:"seed"`
}

// ModelImportance is one model's feature ranking.
type ModelImportance struct {
	Model   string               `json:"model" yaml:"model"`
	Method  string               `json:"method" yaml:"method"`
	Ranking []regress.Importance `json:"ranking" yaml:"ranking"`
}

const (
	MethodNative      = "native"
	MethodPermutation = "permutation"
)

// Run analyses ds. Cancelling ctx stops the run between stages.
func Run(ctx context.Context, ds *dataset.Dataset, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	pairs := ds.NextDayPairs(models.PredictorFeatures)
	if pairs.Len() < MinPairs {
		return nil, fmt.Errorf("%d next-day pairs, need %d: %w", pairs.Len(), MinPairs, dataset.ErrNotEnoughRows)
	}

	start, end := ds.Span()
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Summary: Summary{
			Rows:         ds.Len(),
			Pairs:        pairs.Len(),
			Start:        start,
			End:          end,
			Features:     models.FeatureNames(models.PredictorFeatures),
			Folds:        opts.Folds,
			Alpha:        opts.Alpha,
			TestFraction: opts.TestFraction,
			Seed:         opts.Seed,
		},
	}

	stages := []struct {
		name string
		fn   func(*Report, *dataset.Dataset, *dataset.Pairs, Options) error
	}{
		{"describe", describe},
		{"correlate", correlate},
		{"tests", runTests},
		{"models", fitModels},
		{"findings", summarise},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		began := time.Now()
		if err := st.fn(r, ds, pairs, opts); err != nil {
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
		logger.Debug("stage complete", "stage", st.name, "elapsed", time.Since(began))
	}
	return r, nil
}

func describe(r *Report, ds *dataset.Dataset, _ *dataset.Pairs, _ Options) error {
	r.Descriptives = Describe(ds, models.AllFeatures)
	return nil
}

// Describe summarises each feature column of ds.
func Describe(ds *dataset.Dataset, features []models.Feature) []stats.Summary {
	out := make([]stats.Summary, 0, len(features))
	for _, f := range features {
		out = append(out, stats.Describe(string(f), ds.Column(f)))
	}
	return out
}

func correlate(r *Report, ds *dataset.Dataset, pairs *dataset.Pairs, opts Options) error {
	names := models.FeatureNames(models.AllFeatures)
	m, err := stats.CorrelationMatrix(names, ds.Columns(models.AllFeatures))
	if err != nil {
		return err
	}
	r.Correlations = m

	r.StrongPairs = strongPredictorPairs(m, opts.StrongPair)

	if r.SameDay, err = SameDayCorrelates(ds); err != nil {
		return err
	}
	if r.NextDay, err = NextDayCorrelates(pairs); err != nil {
		return err
	}

	for _, c := range append(append([]stats.Correlation(nil), r.SameDay...), r.NextDay...) {
		if c.Constant {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s is constant; its correlation with %s is undefined", c.Feature, c.Target))
		}
	}
	return nil
}

// SameDayCorrelates ranks every other feature by its correlation with the
// same day's focus score.
func SameDayCorrelates(ds *dataset.Dataset) ([]stats.Correlation, error) {
	var others []models.Feature
	for _, f := range models.AllFeatures {
		if f != models.FeatureFocusScore {
			others = append(others, f)
		}
	}
	focus := ds.Column(models.FeatureFocusScore)
	return stats.RankCorrelates(string(models.FeatureFocusScore), focus,
		models.FeatureNames(others), ds.Columns(others))
}

// NextDayCorrelates ranks the pair features by their correlation with the
// following day's focus score.
func NextDayCorrelates(pairs *dataset.Pairs) ([]stats.Correlation, error) {
	cols := make([][]float64, len(pairs.Features))
	for j := range pairs.Features {
		cols[j] = make([]float64, pairs.Len())
		for i, row := range pairs.X {
			cols[j][i] = row[j]
		}
	}
	return stats.RankCorrelates(TargetName, pairs.Y, models.FeatureNames(pairs.Features), cols)
}

// strongPredictorPairs skips pairs involving focus itself, which are
// already covered by the same-day correlates.
func strongPredictorPairs(m *stats.Matrix, threshold float64) []stats.Correlation {
	var out []stats.Correlation
	for _, p := range m.StrongPairs(threshold) {
		if p.Feature == string(models.FeatureFocusScore) || p.Target == string(models.FeatureFocusScore) {
			continue
		}
		out = append(out, p)
	}
	return out
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func runTests(r *Report, ds *dataset.Dataset, pairs *dataset.Pairs, opts Options) error {
	var on, off stats.Group
	on.Label, off.Label = "cycle", "no cycle"
	days := make([]stats.Group, 7)
	for i := range days {
		days[i].Label = weekdayLabels[i]
	}
	for _, o := range ds.Observations() {
		if o.Cycle == 1 {
			on.Values = append(on.Values, o.FocusScore)
		} else {
			off.Values = append(off.Values, o.FocusScore)
		}
		days[o.DayOfWeek].Values = append(days[o.DayOfWeek].Values, o.FocusScore)
	}

	sleep := make([]float64, pairs.Len())
	sleepCol := indexOf(pairs.Features, models.FeatureSleepHours)
	for i, row := range pairs.X {
		sleep[i] = row[sleepCol]
	}
	low, high, median := stats.SplitByMedian(sleep, pairs.Y)

	candidates := []struct {
		name string
		run  func() (stats.TestResult, error)
	}{
		{"focus by cycle (Welch t)", func() (stats.TestResult, error) {
			return stats.WelchTTest("focus by cycle (Welch t)", on, off)
		}},
		{"focus by weekday (ANOVA)", func() (stats.TestResult, error) {
			return stats.OneWayANOVA("focus by weekday (ANOVA)", days)
		}},
		{"next-day focus by sleep", func() (stats.TestResult, error) {
			name := fmt.Sprintf("next-day focus after sleep > %.1fh (Welch t)", median)
			return stats.WelchTTest(name,
				stats.Group{Label: "more sleep", Values: high},
				stats.Group{Label: "less sleep", Values: low})
		}},
	}

	for _, c := range candidates {
		res, err := c.run()
		if err != nil {
			if errors.Is(err, stats.ErrZeroVariance) {
				opts.Logger.Warn("skipping test", "test", c.name, "err", err)
			} else {
				opts.Logger.Debug("skipping test", "test", c.name, "err", err)
			}
			r.Warnings = append(r.Warnings, fmt.Sprintf("skipped %s: %v", c.name, err))
			continue
		}
		r.Tests = append(r.Tests, res)
	}
	return nil
}

func fitModels(r *Report, _ *dataset.Dataset, pairs *dataset.Pairs, opts Options) error {
	names := models.FeatureNames(pairs.Features)

	split, err := dataset.TimeSplit(pairs.Len(), opts.TestFraction)
	if err != nil {
		return err
	}
	r.Summary.TrainPairs = len(split.Train)
	r.Summary.TestPairs = len(split.Test)
	r.Summary.TestFrom = pairs.Dates[split.Test[0]]

	suite := opts.suite()
	r.Holdout, err = regress.Evaluate(suite, pairs.X, pairs.Y, split)
	if err != nil {
		return err
	}
	for _, s := range r.Holdout {
		if !s.OK() {
			opts.Logger.Warn("model failed", "model", s.Model, "err", s.Err)
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s could not be fitted: %s", s.Model, s.Err))
		}
	}

	// Models in suite are now fitted on the training rows.
	for _, m := range suite {
		if ranking, ok := regress.NativeImportance(m, names); ok {
			r.Importances = append(r.Importances, ModelImportance{Model: m.Name(), Method: MethodNative, Ranking: ranking})
		}
	}

	if best := regress.Best(r.Holdout); best >= 0 {
		m := suite[best]
		r.BestModel = m.Name()
		Xte, yte := pairs.Subset(split.Test)
		ranking, err := regress.PermutationImportance(m, Xte, yte, names, opts.PermutationRepeats, opts.Seed)
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("permutation importance: %v", err))
		} else {
			r.Importances = append([]ModelImportance{{Model: m.Name(), Method: MethodPermutation, Ranking: ranking}}, r.Importances...)
		}
	}

	folds, err := dataset.WalkForward(pairs.Len(), opts.Folds)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("skipped cross-validation: %v", err))
		return nil
	}
	r.CrossValidation, err = regress.CrossValidate(opts.suite(), pairs.X, pairs.Y, folds)
	return err
}

func indexOf(fs []models.Feature, f models.Feature) int {
	for i, g := range fs {
		if g == f {
			return i
		}
	}
	return -1
}
