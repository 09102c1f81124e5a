// ABOUTME: Tests for Observation model and Feature enum.
// ABOUTME: Validates constructor, feature accessors, and range checks.
package models

import (
	"strings"
	"testing"
	"time"
)

func validObservation() *Observation {
	o := NewObservation(time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC))
	o.SleepHours = 7.5
	o.ExerciseMinutes = 30
	o.ScreenTimeHours = 4
	o.StudyHours = 3
	o.SocialHours = 1.5
	o.NutritionScore = 7
	o.CaffeineMg = 120
	o.StressLevel = 4
	o.FocusScore = 6.5
	return o
}

func TestNewObservation(t *testing.T) {
	o := NewObservation(time.Date(2024, 1, 3, 22, 0, 0, 0, time.UTC))

	if o.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if o.DateString() != "2024-01-03" {
		t.Errorf("DateString() = %s, want 2024-01-03", o.DateString())
	}
	if o.Date.Hour() != 0 {
		t.Errorf("expected date truncated to midnight, got %v", o.Date)
	}
	// 2024-01-03 is a Wednesday
	if o.DayOfWeek != 2 {
		t.Errorf("DayOfWeek = %d, want 2", o.DayOfWeek)
	}
	if o.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-01-01", 0}, // Monday
		{"2024-01-06", 5}, // Saturday
		{"2024-01-07", 6}, // Sunday
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, _ := time.Parse(DateLayout, tt.date)
			if got := Weekday(d); got != tt.want {
				t.Errorf("Weekday(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestValueSetValueRoundTrip(t *testing.T) {
	o := NewObservation(time.Now())
	for i, f := range AllFeatures {
		if err := o.SetValue(f, float64(i)); err != nil {
			t.Fatalf("SetValue(%s) failed: %v", f, err)
		}
	}
	for i, f := range AllFeatures {
		if got := o.Value(f); got != float64(i) {
			t.Errorf("Value(%s) = %v, want %v", f, got, float64(i))
		}
	}
}

func TestSetValueUnknownFeature(t *testing.T) {
	o := NewObservation(time.Now())
	if err := o.SetValue(Feature("mood"), 3); err == nil {
		t.Error("expected error for unknown feature")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(o *Observation)
		errSubstr string
	}{
		{name: "valid", mutate: func(o *Observation) {}},
		{name: "sleep too high", mutate: func(o *Observation) { o.SleepHours = 25 }, errSubstr: "sleep_hours"},
		{name: "negative caffeine", mutate: func(o *Observation) { o.CaffeineMg = -1 }, errSubstr: "caffeine_mg"},
		{name: "cycle not a flag", mutate: func(o *Observation) { o.Cycle = 2 }, errSubstr: "cycle"},
		{name: "stress out of range", mutate: func(o *Observation) { o.StressLevel = 11 }, errSubstr: "stress_level"},
		{name: "weekday mismatch", mutate: func(o *Observation) { o.DayOfWeek = 4 }, errSubstr: "does not match"},
		{name: "missing date", mutate: func(o *Observation) { o.Date = time.Time{} }, errSubstr: "date is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validObservation()
			tt.mutate(o)
			err := o.Validate()

			if tt.errSubstr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.errSubstr)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestAllFeaturesHaveUnits(t *testing.T) {
	for _, f := range AllFeatures {
		if _, ok := FeatureUnits[f]; !ok {
			t.Errorf("Feature %s has no unit defined", f)
		}
	}
}
