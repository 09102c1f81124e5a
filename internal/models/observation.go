// ABOUTME: Observation model for one day of self-tracked metrics.
// ABOUTME: Provides constructor, feature accessors, and range validation.
package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used in CSV files and storage.
const DateLayout = "2006-01-02"

// Observation is a single day of tracked metrics.
type Observation struct {
	ID              uuid.UUID `json:"id"`
	Date            time.Time `json:"date"`
	SleepHours      float64   `json:"sleep_hours"`
	ExerciseMinutes float64   `json:"exercise_minutes"`
	ScreenTimeHours float64   `json:"screen_time_hours"`
	StudyHours      float64   `json:"study_hours"`
	SocialHours     float64   `json:"social_hours"`
	NutritionScore  float64   `json:"nutrition_score"`
	CaffeineMg      float64   `json:"caffeine_mg"`
	StressLevel     float64   `json:"stress_level"`
	DayOfWeek       int       `json:"day_of_week"`
	Cycle           int       `json:"cycle"`
	FocusScore      float64   `json:"focus_score"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewObservation creates an Observation for the given day with a generated UUID.
// The date is truncated to midnight UTC and DayOfWeek is derived from it.
func NewObservation(date time.Time) *Observation {
	day := TruncateDay(date)
	return &Observation{
		ID:        uuid.New(),
		Date:      day,
		DayOfWeek: Weekday(day),
		CreatedAt: time.Now(),
	}
}

// FillIdentity generates an ID and creation time for observations decoded
// without them, so no two rows share the zero UUID.
func (o *Observation) FillIdentity() {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
}

// TruncateDay returns midnight UTC of the calendar day t falls on.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day index with Monday as 0 and Sunday as 6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WithNotes sets notes on the observation.
func (o *Observation) WithNotes(notes string) *Observation {
	o.Notes = &notes
	return o
}

// DateString returns the observation date as YYYY-MM-DD.
func (o *Observation) DateString() string {
	return o.Date.Format(DateLayout)
}

// Value returns the numeric value of a feature.
func (o *Observation) Value(f Feature) float64 {
	switch f {
	case FeatureSleepHours:
		return o.SleepHours
	case FeatureExerciseMinutes:
		return o.ExerciseMinutes
	case FeatureScreenTimeHours:
		return o.ScreenTimeHours
	case FeatureStudyHours:
		return o.StudyHours
	case FeatureSocialHours:
		return o.SocialHours
	case FeatureNutritionScore:
		return o.NutritionScore
	case FeatureCaffeineMg:
		return o.CaffeineMg
	case FeatureStressLevel:
		return o.StressLevel
	case FeatureDayOfWeek:
		return float64(o.DayOfWeek)
	case FeatureCycle:
		return float64(o.Cycle)
	case FeatureFocusScore:
		return o.FocusScore
	}
	return math.NaN()
}

// SetValue assigns a feature value. Integer features are rounded.
func (o *Observation) SetValue(f Feature, v float64) error {
	switch f {
	case FeatureSleepHours:
		o.SleepHours = v
	case FeatureExerciseMinutes:
		o.ExerciseMinutes = v
	case FeatureScreenTimeHours:
		o.ScreenTimeHours = v
	case FeatureStudyHours:
		o.StudyHours = v
	case FeatureSocialHours:
		o.SocialHours = v
	case FeatureNutritionScore:
		o.NutritionScore = v
	case FeatureCaffeineMg:
		o.CaffeineMg = v
	case FeatureStressLevel:
		o.StressLevel = v
	case FeatureDayOfWeek:
		o.DayOfWeek = int(math.Round(v))
	case FeatureCycle:
		o.Cycle = int(math.Round(v))
	case FeatureFocusScore:
		o.FocusScore = v
	default:
		return fmt.Errorf("unknown feature: %s", f)
	}
	return nil
}

type featureRange struct {
	min, max float64
}

// featureRanges bounds each feature; a max of +Inf means unbounded.
var featureRanges = map[Feature]featureRange{
	FeatureSleepHours:      {0, 24},
	FeatureExerciseMinutes: {0, math.Inf(1)},
	FeatureScreenTimeHours: {0, 24},
	FeatureStudyHours:      {0, 24},
	FeatureSocialHours:     {0, 24},
	FeatureNutritionScore:  {0, 10},
	FeatureCaffeineMg:      {0, math.Inf(1)},
	FeatureStressLevel:     {0, 10},
	FeatureDayOfWeek:       {0, 6},
	FeatureCycle:           {0, 1},
	FeatureFocusScore:      {0, 10},
}

// Validate checks every feature is finite and within its allowed range.
func (o *Observation) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	for _, f := range AllFeatures {
		v := o.Value(f)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: not a finite number", f)
		}
		r := featureRanges[f]
		if v < r.min || v > r.max {
			if math.IsInf(r.max, 1) {
				return fmt.Errorf("%s: %g must be >= %g", f, v, r.min)
			}
			return fmt.Errorf("%s: %g out of range [%g, %g]", f, v, r.min, r.max)
		}
	}
	if o.DayOfWeek != Weekday(o.Date) {
		return fmt.Errorf("day_of_week: %d does not match %s (expected %d)",
			o.DayOfWeek, o.DateString(), Weekday(o.Date))
	}
	return nil
}
