// ABOUTME: CLI command for recording one day of metrics.
// ABOUTME: One flag per tracked metric; day_of_week is derived from the date.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/models"
)

var (
	addDate    string
	addNotes   string
	addReplace bool
	addValues  = map[models.Feature]*float64{}
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Record one day of metrics",
	Long: `Record one day of metrics. Only --focus-score is required; metrics you
leave out are stored as 0.

METRICS:

  --sleep-hours        hours slept the night before (0-24)
  --exercise-minutes   minutes of exercise
  --screen-time-hours  recreational screen time (0-24)
  --study-hours        focused study or work (0-24)
  --social-hours       time spent socialising (0-24)
  --nutrition-score    diet quality (0-10)
  --caffeine-mg        caffeine intake
  --stress-level       stress (0-10)
  --cycle              1 if the cycle indicator applies today, else 0
  --focus-score        self-rated focus (0-10)

A day can only be recorded once; use --replace to overwrite it.

EXAMPLES:

  focus add --focus-score 7 --sleep-hours 7.5 --stress-level 4
  focus add --date 2024-03-01 --focus-score 5 --caffeine-mg 300
  focus add --focus-score 8 --notes "deep work morning" --replace`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now()
		if addDate != "" {
			parsed, err := parseDate(addDate)
			if err != nil {
				return err
			}
			day = *parsed
		}

		o := models.NewObservation(day)
		for f, v := range addValues {
			if err := o.SetValue(f, *v); err != nil {
				return err
			}
		}
		if addNotes != "" {
			o.WithNotes(addNotes)
		}
		if err := o.Validate(); err != nil {
			return fmt.Errorf("invalid observation: %w", err)
		}

		save := repo.CreateObservation
		if addReplace {
			save = repo.UpsertObservation
		}
		if err := save(o); err != nil {
			return fmt.Errorf("failed to save observation: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Recorded %s", o.DateString()))
		fmt.Fprintf(out, "  %s focus %.1f, sleep %.1fh, stress %.1f\n",
			color.New(color.Faint).Sprint(o.ID.String()[:8]),
			o.FocusScore, o.SleepHours, o.StressLevel)
		return nil
	},
}

// flagName turns sleep_hours into sleep-hours.
func flagName(f models.Feature) string {
	return strings.ReplaceAll(string(f), "_", "-")
}

func init() {
	for _, f := range models.AllFeatures {
		if f == models.FeatureDayOfWeek {
			continue
		}
		v := new(float64)
		addValues[f] = v
		addCmd.Flags().Float64Var(v, flagName(f), 0, fmt.Sprintf("%s (%s)", f, models.FeatureUnits[f]))
	}
	_ = addCmd.MarkFlagRequired(flagName(models.FeatureFocusScore))

	addCmd.Flags().StringVar(&addDate, "date", "", "day to record (YYYY-MM-DD, default: today)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "notes for the day")
	addCmd.Flags().BoolVar(&addReplace, "replace", false, "overwrite the day if it is already recorded")
	rootCmd.AddCommand(addCmd)
}
