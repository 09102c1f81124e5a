// ABOUTME: Turns the numeric results of a run into plain-language findings.
// ABOUTME: Each finding is one sentence; ordering follows the report sections.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/regress"
	"github.com/harperreed/focus/internal/stats"
)

func summarise(r *Report, _ *dataset.Dataset, _ *dataset.Pairs, opts Options) error {
	var f []string
	s := r.Summary
	f = append(f, fmt.Sprintf("%d days from %s to %s give %d next-day pairs.",
		s.Rows, s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Pairs))

	f = append(f, correlateFindings(r.NextDay, opts.Alpha)...)

	for _, t := range r.Tests {
		f = append(f, testFinding(t, opts.Alpha))
	}

	f = append(f, modelFindings(r)...)

	for _, p := range r.StrongPairs {
		f = append(f, fmt.Sprintf("%s and %s move together (r=%+.2f); models may split credit between them.",
			p.Feature, p.Target, p.R))
	}

	r.Findings = f
	return nil
}

func correlateFindings(cs []stats.Correlation, alpha float64) []string {
	var sig []stats.Correlation
	for _, c := range cs {
		if c.Significant(alpha) {
			sig = append(sig, c)
		}
	}
	if len(sig) == 0 {
		return []string{"No single feature is significantly correlated with next-day focus."}
	}

	out := []string{fmt.Sprintf("%d of %d features correlate significantly with next-day focus (p < %g).",
		len(sig), len(cs), alpha)}
	for _, c := range sig[:min(3, len(sig))] {
		dir := "higher"
		if c.R < 0 {
			dir = "lower"
		}
		out = append(out, fmt.Sprintf("Higher %s goes with %s focus the next day (r=%+.2f, %s).",
			c.Feature, dir, c.R, FormatP(c.P)))
	}
	return out
}

func testFinding(t stats.TestResult, alpha float64) string {
	var means []string
	for label, m := range t.GroupMeans {
		means = append(means, fmt.Sprintf("%s %.2f", label, m))
	}
	sort.Strings(means)
	verdict := "no significant difference"
	if t.Significant(alpha) {
		verdict = "a significant difference"
	}
	return fmt.Sprintf("%s: %s (%s; means %s).", t.Name, verdict, FormatP(t.P), strings.Join(means, ", "))
}

func modelFindings(r *Report) []string {
	var baseline *regress.Score
	for i := range r.Holdout {
		if r.Holdout[i].Model == "baseline" && r.Holdout[i].OK() {
			baseline = &r.Holdout[i]
		}
	}
	best := regress.Best(r.Holdout)
	if best < 0 {
		return []string{"No model could be fitted."}
	}
	b := r.Holdout[best]

	var out []string
	if b.R2 <= 0 || (baseline != nil && b.Model == baseline.Model) {
		out = append(out, fmt.Sprintf(
			"No model beat the training mean on the last %d days; next-day focus is not predictable from these features yet.",
			b.TestN))
	} else {
		out = append(out, fmt.Sprintf("%s explains %.0f%% of next-day focus variance on the last %d days (R²=%.2f, MAE %.2f).",
			b.Model, 100*b.R2, b.TestN, b.R2, b.MAE))
	}

	for _, cv := range r.CrossValidation {
		if cv.Model == b.Model && cv.OK() {
			out = append(out, fmt.Sprintf("Across %d walk-forward folds %s scores R²=%.2f ± %.2f.",
				cv.Folds, cv.Model, cv.MeanR2, cv.StdR2))
		}
	}

	for _, imp := range r.Importances {
		if imp.Method != MethodPermutation {
			continue
		}
		var top []string
		for _, i := range imp.Ranking {
			if i.Score <= 0 || len(top) == 3 {
				break
			}
			top = append(top, i.Feature)
		}
		if len(top) > 0 {
			out = append(out, fmt.Sprintf("The %s model leans most on %s.", imp.Model, strings.Join(top, ", ")))
		}
	}
	return out
}

// FormatP renders a p-value for humans.
func FormatP(p float64) string {
	switch {
	case math.IsNaN(p):
		return "p=n/a"
	case p < 0.001:
		return "p<0.001"
	default:
		return fmt.Sprintf("p=%.3f", p)
	}
}
