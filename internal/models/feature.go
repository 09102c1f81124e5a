// ABOUTME: Feature enum for the columns of a daily observation.
// ABOUTME: Defines names, units, and the model-input feature set.
package models

// Feature names a numeric column of a daily observation.
type Feature string

const (
	// Rest and activity
	FeatureSleepHours      Feature = "sleep_hours"
	FeatureExerciseMinutes Feature = "exercise_minutes"

	// Time use
	FeatureScreenTimeHours Feature = "screen_time_hours"
	FeatureStudyHours      Feature = "study_hours"
	FeatureSocialHours     Feature = "social_hours"

	// Intake
	FeatureNutritionScore Feature = "nutrition_score"
	FeatureCaffeineMg     Feature = "caffeine_mg"

	// State
	FeatureStressLevel Feature = "stress_level"
	FeatureDayOfWeek   Feature = "day_of_week"
	FeatureCycle       Feature = "cycle"
	FeatureFocusScore  Feature = "focus_score"
)

// FeatureUnits maps features to their display units.
var FeatureUnits = map[Feature]string{
	FeatureSleepHours:      "hours",
	FeatureExerciseMinutes: "min",
	FeatureScreenTimeHours: "hours",
	FeatureStudyHours:      "hours",
	FeatureSocialHours:     "hours",
	FeatureNutritionScore:  "scale",
	FeatureCaffeineMg:      "mg",
	FeatureStressLevel:     "scale",
	FeatureDayOfWeek:       "day",
	FeatureCycle:           "flag",
	FeatureFocusScore:      "scale",
}

// AllFeatures lists every numeric column in canonical CSV order.
var AllFeatures = []Feature{
	FeatureSleepHours, FeatureExerciseMinutes,
	FeatureScreenTimeHours, FeatureStudyHours, FeatureSocialHours,
	FeatureNutritionScore, FeatureCaffeineMg,
	FeatureStressLevel, FeatureDayOfWeek, FeatureCycle, FeatureFocusScore,
}

// PredictorFeatures are the model inputs used to predict next-day focus.
// Today's focus score is included as an autoregressive input.
var PredictorFeatures = AllFeatures

// FeatureNames converts features to plain strings.
func FeatureNames(features []Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = string(f)
	}
	return names
}
