// ABOUTME: CLI command rendering PNG charts of the data and the analysis.
// ABOUTME: Timeline, scatters of the strongest next-day correlates, and importance bars.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/charts"
	"github.com/harperreed/focus/internal/dataset"
)

var (
	plotDir   string
	plotSince string
)

var plotCmd = &cobra.Command{
	Use:   "plot [file.csv]",
	Short: "Render charts as PNG files",
	Long: `Render charts into a directory:

  timeline.png            sleep, stress and focus over time
  scatter_<metric>.png    the three strongest next-day correlates, with fitted line
  importance_<model>_<method>.png  feature importance per model

With too few days to fit models only the timeline is written.

EXAMPLES:

  focus plot                       # Stored observations into ./plots
  focus plot data.csv --dir out    # A CSV file into ./out`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{fileOptional: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args, plotSince)
		if err != nil {
			return err
		}

		r, err := analysis.Run(context.Background(), ds, analysisOptions())
		switch {
		case errors.Is(err, dataset.ErrNotEnoughRows):
			logger.Warn("too few days for models; writing the timeline only", "days", ds.Len())
			r = nil
		case err != nil:
			return fmt.Errorf("analysis failed: %w", err)
		}

		files, err := charts.RenderAll(plotDir, ds, r)
		if err != nil {
			return fmt.Errorf("failed to render plots: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Wrote %d charts", len(files)))
		faint := color.New(color.Faint)
		for _, f := range files {
			fmt.Fprintln(out, " ", faint.Sprint(f))
		}
		return nil
	},
}

func init() {
	plotCmd.Flags().StringVarP(&plotDir, "dir", "d", "plots", "output directory")
	plotCmd.Flags().StringVar(&plotSince, "since", "", "only use days on or after this date (YYYY-MM-DD)")
	rootCmd.AddCommand(plotCmd)
}
