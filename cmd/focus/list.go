// ABOUTME: CLI command for listing recorded days.
// ABOUTME: Supports a since filter and limiting to the most recent days.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	listSince string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List recorded days",
	Long: `List recorded days, oldest first.

OUTPUT FORMAT:

  ID  DATE  DAY  SLEEP  EXERCISE  SCREEN  STUDY  SOCIAL  FOOD  CAFFEINE  STRESS  CYCLE  FOCUS  (NOTES)

  The ID is an 8-character prefix you can use with delete.

EXAMPLES:

  focus list                      # Last 20 days
  focus list -n 60                # Last 60 days
  focus list --since 2024-06-01   # Everything from June onwards
  focus list -n 0                 # Every day`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := parseDate(listSince)
		if err != nil {
			return err
		}

		obs, err := repo.ListObservations(since, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list observations: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(obs) == 0 {
			fmt.Fprintln(out, "No observations found.")
			return nil
		}

		faint := color.New(color.Faint)
		bold := color.New(color.Bold)
		fmt.Fprintln(out, bold.Sprintf("%-8s %-10s %-3s %6s %8s %6s %6s %6s %5s %8s %6s %5s %6s",
			"ID", "DATE", "DAY", "SLEEP", "EXERCISE", "SCREEN", "STUDY", "SOCIAL", "FOOD", "CAFFEINE", "STRESS", "CYCLE", "FOCUS"))
		for _, o := range obs {
			notes := ""
			if o.Notes != nil && *o.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(*o.Notes, 30))
			}
			fmt.Fprintf(out, "%s %s %s %6.1f %8.0f %6.1f %6.1f %6.1f %5.1f %8.0f %6.1f %5d %6.1f%s\n",
				faint.Sprint(o.ID.String()[:8]),
				o.DateString(),
				padRight(o.Date.Weekday().String()[:3], 3),
				o.SleepHours, o.ExerciseMinutes, o.ScreenTimeHours, o.StudyHours, o.SocialHours,
				o.NutritionScore, o.CaffeineMg, o.StressLevel, o.Cycle, o.FocusScore,
				notes)
		}

		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "only days on or after this date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of days, most recent first kept (0 for all)")
	rootCmd.AddCommand(listCmd)
}
