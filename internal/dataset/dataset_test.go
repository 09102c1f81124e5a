// ABOUTME: Tests for CSV loading, next-day pairing, splits, and generation.
// ABOUTME: Uses generated data so fixtures stay small and deterministic.
package dataset

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/focus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func generate(t *testing.T, days int) *Dataset {
	t.Helper()
	ds, err := Generate(GenerateOptions{Days: days, Start: testStart, Seed: 42})
	require.NoError(t, err)
	return ds
}

const header = "date,sleep_hours,exercise_minutes,screen_time_hours,study_hours,social_hours,nutrition_score,caffeine_mg,stress_level,cycle,focus_score\n"

func TestLoadWellFormedFileYieldsAllRows(t *testing.T) {
	ds := generate(t, 120)

	path := filepath.Join(t.TempDir(), "days.csv")
	require.NoError(t, SaveCSV(path, ds.Observations()))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 120, loaded.Len())

	for i, o := range loaded.Observations() {
		want := ds.Observations()[i]
		assert.Equal(t, want.DateString(), o.DateString())
		for _, f := range models.AllFeatures {
			assert.InDelta(t, want.Value(f), o.Value(f), 1e-9, "row %d feature %s", i, f)
		}
	}
}

func TestReadCSVHeaderNormalisationAndDerivedWeekday(t *testing.T) {
	input := "Date,Sleep Hours,exercise-minutes,screen_time_hours,study_hours,social_hours,nutrition_score,caffeine_mg,stress_level,cycle,focus_score,notes\n" +
		"2024-01-02,7.5,30,4,3,1,7,100,4,0,6.5,good day\n" +
		"2024-01-01,6,0,6,2,2,5,200,7,1,4,\n"

	ds, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	first := ds.Observations()[0]
	assert.Equal(t, "2024-01-01", first.DateString(), "rows are sorted by date")
	assert.Equal(t, 0, first.DayOfWeek)
	assert.Nil(t, first.Notes)

	second := ds.Observations()[1]
	assert.Equal(t, 1, second.DayOfWeek)
	require.NotNil(t, second.Notes)
	assert.Equal(t, "good day", *second.Notes)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		errSubstr string
	}{
		{
			name:      "header only",
			input:     header,
			errSubstr: "no data rows",
		},
		{
			name:      "missing column",
			input:     "date,sleep_hours\n2024-01-01,7\n",
			errSubstr: `missing required column "exercise_minutes"`,
		},
		{
			name:      "bad number",
			input:     header + "2024-01-01,7,30,4,3,1,7,lots,4,0,6\n",
			errSubstr: "line 2: caffeine_mg: not a number",
		},
		{
			name:      "bad date",
			input:     header + "01/02/2024,7,30,4,3,1,7,100,4,0,6\n",
			errSubstr: "line 2: date: invalid date",
		},
		{
			name:      "out of range",
			input:     header + "2024-01-01,7,30,4,3,1,7,100,4,0,6\n2024-01-02,30,30,4,3,1,7,100,4,0,6\n",
			errSubstr: "line 3: sleep_hours",
		},
		{
			name:      "duplicate day",
			input:     header + "2024-01-01,7,30,4,3,1,7,100,4,0,6\n2024-01-01,7,30,4,3,1,7,100,4,0,6\n",
			errSubstr: "duplicate observation for 2024-01-01",
		},
		{
			name:      "fractional cycle",
			input:     header + "2024-01-01,7,30,4,3,1,7,100,4,0.5,6\n",
			errSubstr: "cycle: expected an integer",
		},
		{
			name:      "empty file",
			input:     "",
			errSubstr: "empty file",
		},
		{
			name:      "blank line counts toward line numbers",
			input:     header + "2024-01-01,7,30,4,3,1,7,100,4,0,6\n\n2024-01-02,7,30,4,3,1,7,lots,4,0,6\n",
			errSubstr: "line 4: caffeine_mg: not a number",
		},
		{
			name:      "quoted multi-line note counts toward line numbers",
			input:     strings.TrimSuffix(header, "\n") + ",notes\n2024-01-01,7,30,4,3,1,7,100,4,0,6,\"two\nlines\"\n2024-01-02,7,30,4,3,1,7,100,4,0,11,\n",
			errSubstr: "line 4: focus_score",
		},
		{
			name:      "duplicate header after normalising",
			input:     "Sleep Hours," + header,
			errSubstr: `columns "Sleep Hours" and "sleep_hours" both map to "sleep_hours"`,
		},
		{
			name:      "ragged row",
			input:     header + "2024-01-01,7,30\n",
			errSubstr: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestReadCSVStripsByteOrderMark(t *testing.T) {
	input := "\ufeff" + header + "2024-01-01,7,30,4,3,1,7,100,4,0,6\n"

	ds, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "2024-01-01", ds.Observations()[0].DateString())
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteCSVHeader(t *testing.T) {
	ds := generate(t, 3)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds.Observations()))

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t,
		"date,sleep_hours,exercise_minutes,screen_time_hours,study_hours,social_hours,nutrition_score,caffeine_mg,stress_level,day_of_week,cycle,focus_score,notes",
		firstLine)
}

func TestNextDayPairs(t *testing.T) {
	ds := generate(t, 10)
	p := ds.NextDayPairs(models.PredictorFeatures)

	require.Equal(t, 9, p.Len())
	obs := ds.Observations()
	for i := 0; i < p.Len(); i++ {
		assert.Equal(t, obs[i+1].FocusScore, p.Y[i])
		assert.Equal(t, obs[i].Date, p.Dates[i])
		assert.Equal(t, obs[i].SleepHours, p.X[i][0])
	}
}

func TestNextDayPairsSkipsGaps(t *testing.T) {
	ds := generate(t, 6)
	obs := ds.Observations()
	// drop day 3 so days 2 and 4 are not adjacent
	gapped, err := New(append(append([]*models.Observation{}, obs[:3]...), obs[4:]...))
	require.NoError(t, err)

	p := gapped.NextDayPairs([]models.Feature{models.FeatureSleepHours})
	// pairs: 0->1, 1->2, 4->5
	assert.Equal(t, 3, p.Len())
}

func TestTimeSplitIsChronological(t *testing.T) {
	split, err := TimeSplit(119, 0.2)
	require.NoError(t, err)

	assert.Len(t, split.Test, 24)
	assert.Len(t, split.Train, 95)
	assert.Less(t, split.Train[len(split.Train)-1], split.Test[0])
}

func TestTimeSplitErrors(t *testing.T) {
	_, err := TimeSplit(10, 0)
	assert.Error(t, err)

	_, err = TimeSplit(2, 0.5)
	assert.True(t, errors.Is(err, ErrNotEnoughRows))
}

func TestWalkForward(t *testing.T) {
	splits, err := WalkForward(119, 5)
	require.NoError(t, err)
	require.Len(t, splits, 5)

	for i, s := range splits {
		assert.Len(t, s.Test, 19)
		assert.Equal(t, s.Train[len(s.Train)-1]+1, s.Test[0], "fold %d", i)
		if i > 0 {
			assert.Greater(t, len(s.Train), len(splits[i-1].Train))
		}
	}
	last := splits[len(splits)-1]
	assert.Equal(t, 118, last.Test[len(last.Test)-1])
}

func TestGenerateDeterministicAndValid(t *testing.T) {
	a := generate(t, 60)
	b := generate(t, 60)

	require.Equal(t, 60, a.Len())
	for i := range a.Observations() {
		oa, ob := a.Observations()[i], b.Observations()[i]
		require.NoError(t, oa.Validate())
		for _, f := range models.AllFeatures {
			assert.Equal(t, oa.Value(f), ob.Value(f))
		}
	}

	start, end := a.Span()
	assert.Equal(t, testStart, start)
	assert.Equal(t, testStart.AddDate(0, 0, 59), end)
}

func TestGenerateTooFewDays(t *testing.T) {
	_, err := Generate(GenerateOptions{Days: 1, Seed: 1})
	assert.True(t, errors.Is(err, ErrNotEnoughRows))
}

func TestPinkNoiseNormalised(t *testing.T) {
	noise := PinkNoise(rand.New(rand.NewSource(7)), 256)
	require.Len(t, noise, 256)

	var sum float64
	for _, v := range noise {
		sum += v
	}
	assert.InDelta(t, 0, sum/256, 1e-9)
}
