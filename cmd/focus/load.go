// ABOUTME: CLI command for loading a CSV of daily observations into storage.
// ABOUTME: Rejects days already stored unless --replace is given.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/storage"
)

var loadReplace bool

var loadCmd = &cobra.Command{
	Use:   "load <file.csv>",
	Short: "Load a CSV into storage",
	Long: `Load daily observations from a CSV file into the configured storage.

The file is validated completely before anything is written: a missing
column, a non-numeric cell, an out-of-range value, or a repeated date
aborts the load and names the offending line.

By default a day that is already stored is an error. Use --replace to
overwrite stored days with the values from the file.

EXAMPLES:

  focus load data.csv             # Add new days
  focus load data.csv --replace   # Overwrite days already stored`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.LoadCSV(args[0])
		if err != nil {
			return err
		}
		obs := ds.Observations()

		if loadReplace {
			if err := repo.ImportData(storage.NewExportData(obs)); err != nil {
				return fmt.Errorf("load failed: %w", err)
			}
		} else {
			for _, o := range obs {
				existing, err := repo.GetObservationByDate(o.Date)
				if err == nil {
					return fmt.Errorf("%s is already stored (ID %s); use --replace to overwrite",
						o.DateString(), existing.ID.String()[:8])
				}
			}
			for i, o := range obs {
				if err := repo.CreateObservation(o); err != nil {
					return fmt.Errorf("load failed after %d of %d days: %w", i, len(obs), err)
				}
			}
		}

		total, err := repo.CountObservations()
		if err != nil {
			return err
		}
		from, to := ds.Span()
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Loaded %d days from %s", len(obs), args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "  %s to %s, %d days stored in total\n",
			from.Format("2006-01-02"), to.Format("2006-01-02"), total)
		return nil
	},
}

func init() {
	loadCmd.Flags().BoolVar(&loadReplace, "replace", false, "overwrite days that are already stored")
	rootCmd.AddCommand(loadCmd)
}
