// ABOUTME: CLI command printing descriptive statistics and focus correlates.
// ABOUTME: A quick look at the data without fitting any models.
package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/stats"
)

var (
	describeSince        string
	describeCorrelations bool
)

var describeCmd = &cobra.Command{
	Use:     "describe [file.csv]",
	Aliases: []string{"stats"},
	Short:   "Descriptive statistics for every metric",
	Long: `Print count, mean, standard deviation, quartiles and skew for every
metric. With --correlations, also rank the metrics by their Pearson
correlation with next-day focus.

EXAMPLES:

  focus describe                       # Stored observations
  focus describe data.csv              # A CSV file
  focus describe --correlations        # Add next-day correlates
  focus describe --since 2024-06-01`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{fileOptional: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args, describeSince)
		if err != nil {
			return err
		}
		if ds.Len() < 2 {
			return fmt.Errorf("%d observations, need at least 2: %w", ds.Len(), dataset.ErrNotEnoughRows)
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		from, to := ds.Span()
		fmt.Fprintf(out, "%d days, %s to %s\n\n", ds.Len(), from.Format(models.DateLayout), to.Format(models.DateLayout))

		fmt.Fprintln(out, bold.Sprintf("%-18s %8s %8s %8s %8s %8s %8s %8s %6s",
			"METRIC", "MEAN", "STD", "MIN", "Q25", "MEDIAN", "Q75", "MAX", "SKEW"))
		for _, s := range analysis.Describe(ds, models.AllFeatures) {
			fmt.Fprintf(out, "%-18s %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f %6.2f\n",
				s.Name, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max, s.Skew)
		}

		if !describeCorrelations {
			return nil
		}

		pairs := ds.NextDayPairs(models.PredictorFeatures)
		if pairs.Len() < 3 {
			return fmt.Errorf("%d next-day pairs, need at least 3 for correlations: %w", pairs.Len(), dataset.ErrNotEnoughRows)
		}
		cs, err := analysis.NextDayCorrelates(pairs)
		if err != nil {
			return fmt.Errorf("failed to correlate: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, bold.Sprintf("Correlation with next-day focus (%d pairs)", pairs.Len()))
		printCorrelations(out, cs)
		return nil
	},
}

func printCorrelations(out io.Writer, cs []stats.Correlation) {
	alpha := analysis.DefaultOptions().Alpha
	green := color.New(color.FgGreen)
	faint := color.New(color.Faint)
	for _, c := range cs {
		if c.Constant {
			fmt.Fprintf(out, "  %-18s %s\n", c.Feature, faint.Sprint("constant, r=0"))
			continue
		}
		line := fmt.Sprintf("  %-18s r=%+.2f  %s  rho=%+.2f", c.Feature, c.R, analysis.FormatP(c.P), c.Spearman)
		if c.Significant(alpha) {
			line = green.Sprint(line)
		}
		fmt.Fprintln(out, line)
	}
}

func init() {
	describeCmd.Flags().StringVar(&describeSince, "since", "", "only use days on or after this date (YYYY-MM-DD)")
	describeCmd.Flags().BoolVarP(&describeCorrelations, "correlations", "c", false, "also rank metrics by correlation with next-day focus")
	rootCmd.AddCommand(describeCmd)
}
