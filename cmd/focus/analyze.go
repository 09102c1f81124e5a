// ABOUTME: CLI command running the full next-day focus analysis.
// ABOUTME: Reads a CSV or stored observations and renders the report in any supported format.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/charts"
	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/report"
)

var (
	analyzeFormat       string
	analyzeOutput       string
	analyzePlots        string
	analyzeSince        string
	analyzeTestFraction float64
	analyzeFolds        int
	analyzeSeed         int64
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [file.csv]",
	Aliases: []string{"run"},
	Short:   "Analyze what predicts next-day focus",
	Long: `Run the full analysis and print the report.

With a CSV path the file is analysed directly and storage is not touched.
Without one, every stored observation is used.

PIPELINE:

  1. Descriptive statistics for every column
  2. Correlation matrix, plus correlates of same-day and next-day focus
  3. Tests: cycle on/off (Welch t), weekday (ANOVA), short vs long sleep
  4. Models fitted on the earliest days and scored on the latest ones:
     baseline, linear, ridge, decision tree, random forest, k-nearest
  5. Feature importance and plain-language findings

The split is by date and never shuffled, so every test day comes after
every training day. At least 10 consecutive-day pairs are needed.

CSV COLUMNS:

  date, sleep_hours, exercise_minutes, screen_time_hours, study_hours,
  social_hours, nutrition_score, caffeine_mg, stress_level, cycle,
  focus_score (day_of_week is optional and derived from date)

EXAMPLES:

  focus analyze data.csv                       # Report from a file
  focus analyze                                # Report from storage
  focus analyze --since 2024-06-01             # Only recent days
  focus analyze --format json -o report.json   # Machine-readable
  focus analyze --plots ./plots                # Also write PNG charts
  focus analyze --test-fraction 0.3 --seed 7`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{fileOptional: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(analyzeFormat)
		if err != nil {
			return err
		}

		ds, err := loadDataset(args, analyzeSince)
		if err != nil {
			return err
		}

		opts := analysisOptions()
		if cmd.Flags().Changed("test-fraction") {
			opts.TestFraction = analyzeTestFraction
		}
		if cmd.Flags().Changed("folds") {
			opts.Folds = analyzeFolds
		}
		if cmd.Flags().Changed("seed") {
			opts.Seed = analyzeSeed
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		r, err := analysis.Run(ctx, ds, opts)
		if err != nil {
			if errors.Is(err, dataset.ErrNotEnoughRows) {
				return fmt.Errorf("%d days is not enough to model next-day focus (need %d consecutive-day pairs): %w",
					ds.Len(), analysis.MinPairs, err)
			}
			return fmt.Errorf("analysis failed: %w", err)
		}

		if err := writeReport(cmd.OutOrStdout(), r, format, analyzeOutput); err != nil {
			return err
		}

		if analyzePlots != "" {
			files, err := charts.RenderAll(analyzePlots, ds, r)
			if err != nil {
				return fmt.Errorf("failed to render plots: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("✓ Wrote %d charts to %s", len(files), analyzePlots))
		}
		return nil
	},
}

// writeReport renders r to path, or to out when path is empty.
func writeReport(out io.Writer, r *analysis.Report, format report.Format, path string) error {
	if path == "" {
		return report.Write(out, r, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if format == report.FormatText {
		// No colour escapes in files.
		prev := color.NoColor
		color.NoColor = true
		defer func() { color.NoColor = prev }()
	}
	if err := report.Write(f, r, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(out, color.GreenString("✓ Report written to %s", path))
	return nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "output format: text, markdown, json, yaml")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzePlots, "plots", "", "directory to write PNG charts into")
	analyzeCmd.Flags().StringVar(&analyzeSince, "since", "", "only use days on or after this date (YYYY-MM-DD)")
	analyzeCmd.Flags().Float64Var(&analyzeTestFraction, "test-fraction", 0.2, "share of the latest pairs held out for testing")
	analyzeCmd.Flags().IntVar(&analyzeFolds, "folds", 5, "walk-forward cross-validation folds")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 42, "random seed for tree ensembles and permutations")
	rootCmd.AddCommand(analyzeCmd)
}
