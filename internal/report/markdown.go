// ABOUTME: Markdown rendering of an analysis report.
// ABOUTME: Sections mirror the console report, with pipe tables for the numbers.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/stats"
)

// Markdown renders r as a Markdown document.
func Markdown(r *analysis.Report) string {
	var sb strings.Builder
	s := r.Summary

	sb.WriteString("# Focus Analysis\n\n")
	sb.WriteString(fmt.Sprintf("*%d days from %s to %s, %d next-day pairs. Generated %s.*\n\n",
		s.Rows, s.Start.Format(dateFmt), s.End.Format(dateFmt), s.Pairs, r.GeneratedAt.Format("2006-01-02 15:04")))

	sb.WriteString("## Findings\n\n")
	for _, f := range r.Findings {
		sb.WriteString(fmt.Sprintf("- %s\n", f))
	}
	sb.WriteString("\n")

	sb.WriteString("## Descriptive Statistics\n\n")
	sb.WriteString("| Feature | Mean | Std | Min | Q25 | Median | Q75 | Max |\n")
	sb.WriteString("|---------|------|-----|-----|-----|--------|-----|-----|\n")
	for _, d := range r.Descriptives {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			d.Name, d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max))
	}
	sb.WriteString("\n")

	sb.WriteString("## Next-Day Focus Correlates\n\n")
	writeCorrelations(&sb, r.NextDay)
	sb.WriteString("## Same-Day Focus Correlates\n\n")
	writeCorrelations(&sb, r.SameDay)

	if r.Correlations != nil {
		sb.WriteString("## Correlation Matrix\n\n")
		writeMatrix(&sb, r.Correlations)
	}

	if len(r.Tests) > 0 {
		sb.WriteString("## Statistical Tests\n\n")
		sb.WriteString("| Test | Statistic | p | Effect size | Group means |\n")
		sb.WriteString("|------|-----------|---|-------------|-------------|\n")
		for _, t := range r.Tests {
			sb.WriteString(fmt.Sprintf("| %s | %.3f | %s | %.2f | %s |\n",
				t.Name, t.Statistic, analysis.FormatP(t.P), t.EffectSize, groupMeans(t)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Models\n\n")
	sb.WriteString(fmt.Sprintf("Trained on %d pairs, tested on the last %d (from %s). Walk-forward CV uses %d folds.\n\n",
		s.TrainPairs, s.TestPairs, s.TestFrom.Format(dateFmt), s.Folds))
	sb.WriteString("| Model | R² | MAE | RMSE | CV R² |\n")
	sb.WriteString("|-------|----|-----|------|-------|\n")
	cv := cvByModel(r.CrossValidation)
	for _, sc := range r.Holdout {
		name := sc.Model
		if name == r.BestModel {
			name = "**" + name + "**"
		}
		if !sc.OK() {
			sb.WriteString(fmt.Sprintf("| %s | failed: %s | | | |\n", name, sc.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %.3f | %.3f | %.3f | %s |\n", name, sc.R2, sc.MAE, sc.RMSE, formatCV(cv[sc.Model])))
	}
	sb.WriteString("\n")

	for _, imp := range r.Importances {
		sb.WriteString(fmt.Sprintf("### Importance: %s (%s)\n\n", imp.Model, imp.Method))
		for i, it := range imp.Ranking {
			sb.WriteString(fmt.Sprintf("%d. %s: %.3f\n", i+1, it.Feature, it.Score))
		}
		sb.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeCorrelations(sb *strings.Builder, cs []stats.Correlation) {
	sb.WriteString("| Feature | r | Spearman | p |\n")
	sb.WriteString("|---------|---|----------|---|\n")
	for _, c := range cs {
		if c.Constant {
			sb.WriteString(fmt.Sprintf("| %s | constant | | |\n", c.Feature))
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %+.3f | %+.3f | %s |\n", c.Feature, c.R, c.Spearman, analysis.FormatP(c.P)))
	}
	sb.WriteString("\n")
}

func writeMatrix(sb *strings.Builder, m *stats.Matrix) {
	sb.WriteString("| |")
	for _, n := range m.Names {
		sb.WriteString(" " + n + " |")
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---|", len(m.Names)))
	sb.WriteString("\n")
	for i, n := range m.Names {
		sb.WriteString("| " + n + " |")
		for _, v := range m.Values[i] {
			if math.IsNaN(v) {
				sb.WriteString(" - |")
			} else {
				sb.WriteString(fmt.Sprintf(" %+.2f |", v))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func groupMeans(t stats.TestResult) string {
	parts := make([]string, 0, len(t.GroupMeans))
	for label, m := range t.GroupMeans {
		parts = append(parts, fmt.Sprintf("%s %.2f (n=%d)", label, m, t.GroupSizes[label]))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
