// ABOUTME: Coloured console rendering of an analysis report.
// ABOUTME: Colour is dropped automatically when stdout is not a terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/regress"
	"github.com/harperreed/focus/internal/stats"
)

const dateFmt = "2006-01-02"

// Text writes the human-readable console report.
func Text(w io.Writer, r *analysis.Report) error {
	tw := &textWriter{w: w}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	s := r.Summary
	tw.printf("%s  %s\n\n",
		bold.Sprint("Focus analysis"),
		faint.Sprintf("%d days, %s → %s, %d next-day pairs", s.Rows, s.Start.Format(dateFmt), s.End.Format(dateFmt), s.Pairs))

	tw.section(bold, "DESCRIPTIVES")
	tw.printf("  %-18s %8s %8s %8s %8s %8s\n", "feature", "mean", "std", "min", "median", "max")
	for _, d := range r.Descriptives {
		tw.printf("  %-18s %8.2f %8.2f %8.2f %8.2f %8.2f\n", d.Name, d.Mean, d.Std, d.Min, d.Median, d.Max)
	}

	tw.section(bold, "CORRELATES OF NEXT-DAY FOCUS")
	tw.correlations(r.NextDay, s.Alpha, green, faint)

	tw.section(bold, "CORRELATES OF SAME-DAY FOCUS")
	tw.correlations(r.SameDay, s.Alpha, green, faint)

	if len(r.Tests) > 0 {
		tw.section(bold, "TESTS")
		for _, t := range r.Tests {
			mark := " "
			if t.Significant(s.Alpha) {
				mark = green.Sprint("*")
			}
			tw.printf("  %s %s\n    stat %.3f  %s  effect %.2f\n",
				mark, t.Name, t.Statistic, analysis.FormatP(t.P), t.EffectSize)
		}
	}

	tw.section(bold, fmt.Sprintf("MODELS  (train %d pairs, test last %d from %s)",
		s.TrainPairs, s.TestPairs, s.TestFrom.Format(dateFmt)))
	tw.printf("  %-10s %8s %8s %8s   %s\n", "model", "R²", "MAE", "RMSE", fmt.Sprintf("walk-forward R² (%d folds)", s.Folds))
	cv := cvByModel(r.CrossValidation)
	for _, sc := range r.Holdout {
		name := sc.Model
		if name == r.BestModel {
			name = green.Sprintf("%-10s", name)
		} else {
			name = fmt.Sprintf("%-10s", name)
		}
		if !sc.OK() {
			tw.printf("  %s %s\n", name, yellow.Sprintf("failed: %s", sc.Err))
			continue
		}
		tw.printf("  %s %8.3f %8.3f %8.3f   %s\n", name, sc.R2, sc.MAE, sc.RMSE, formatCV(cv[sc.Model]))
	}

	for _, imp := range r.Importances {
		tw.section(bold, fmt.Sprintf("IMPORTANCE  (%s, %s)", imp.Model, imp.Method))
		for i, it := range imp.Ranking {
			if i == 5 {
				break
			}
			spread := ""
			if it.Std > 0 {
				spread = faint.Sprintf(" ± %.3f", it.Std)
			}
			tw.printf("  %d. %-18s %.3f%s\n", i+1, it.Feature, it.Score, spread)
		}
	}

	tw.section(bold, "FINDINGS")
	for _, f := range r.Findings {
		tw.printf("  • %s\n", f)
	}

	if len(r.Warnings) > 0 {
		tw.section(bold, "WARNINGS")
		for _, msg := range r.Warnings {
			tw.printf("  %s\n", yellow.Sprintf("⚠ %s", msg))
		}
	}
	return tw.err
}

// textWriter remembers the first write error so rendering code stays flat.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) section(bold *color.Color, title string) {
	t.printf("\n%s\n", bold.Sprint(title))
}

func (t *textWriter) correlations(cs []stats.Correlation, alpha float64, green, faint *color.Color) {
	t.printf("  %-18s %7s %9s %9s\n", "feature", "r", "spearman", "p")
	for _, c := range cs {
		if c.Constant {
			t.printf("  %-18s %s\n", c.Feature, faint.Sprint("constant"))
			continue
		}
		line := fmt.Sprintf("  %-18s %+7.3f %+9.3f %9s", c.Feature, c.R, c.Spearman, analysis.FormatP(c.P))
		if c.Significant(alpha) {
			line = green.Sprint(line) + " *"
		}
		t.printf("%s\n", line)
	}
}

func cvByModel(cvs []regress.CVScore) map[string]regress.CVScore {
	out := make(map[string]regress.CVScore, len(cvs))
	for _, cv := range cvs {
		out[cv.Model] = cv
	}
	return out
}

func formatCV(cv regress.CVScore) string {
	switch {
	case cv.Model == "":
		return "-"
	case !cv.OK():
		return "failed"
	default:
		return fmt.Sprintf("%.3f ± %.3f", cv.MeanR2, cv.StdR2)
	}
}
