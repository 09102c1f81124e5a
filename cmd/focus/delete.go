// ABOUTME: CLI command for deleting a recorded day.
// ABOUTME: Supports deletion by full ID, ID prefix, or date.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/models"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id|date>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a recorded day",
	Long: `Delete a recorded day by its ID, ID prefix, or date.

The ID prefix is shown in the first column of 'focus list' output.

EXAMPLES:

  focus delete abc12345       # Delete by 8-char prefix
  focus delete 2024-03-01     # Delete by date
  focus rm abc1               # Short prefix (if unique)

CAUTION:

  This permanently deletes the day. There is no undo.
  If the prefix matches multiple days, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]

		var o *models.Observation
		var err error
		if day, perr := time.Parse(models.DateLayout, target); perr == nil {
			o, err = repo.GetObservationByDate(day)
		} else {
			o, err = repo.GetObservation(target)
		}
		if err != nil {
			return fmt.Errorf("observation %s: %w", target, err)
		}

		if err := repo.DeleteObservation(o.ID.String()); err != nil {
			return fmt.Errorf("failed to delete observation: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("✗ Deleted %s", o.DateString()))
		fmt.Fprintf(cmd.OutOrStdout(), "  %s focus %.1f\n",
			color.New(color.Faint).Sprint(o.ID.String()[:8]), o.FocusScore)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
