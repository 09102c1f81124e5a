// ABOUTME: CSV reading and writing for daily observation tables.
// ABOUTME: Uses gota dataframes for column access; validates every row.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/harperreed/focus/internal/models"
)

const (
	columnDate  = "date"
	columnNotes = "notes"
)

// requiredColumns must be present in every input file. day_of_week is
// derived from the date when absent.
var requiredColumns = []string{
	columnDate,
	string(models.FeatureSleepHours),
	string(models.FeatureExerciseMinutes),
	string(models.FeatureScreenTimeHours),
	string(models.FeatureStudyHours),
	string(models.FeatureSocialHours),
	string(models.FeatureNutritionScore),
	string(models.FeatureCaffeineMg),
	string(models.FeatureStressLevel),
	string(models.FeatureCycle),
	string(models.FeatureFocusScore),
}

// LoadCSV reads a dataset from a CSV file on disk.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses a header-led CSV of daily observations.
// Column order is free and header names are matched case-insensitively
// after normalising spaces and dashes to underscores. Errors name the
// physical line in the file, counting blank lines.
func ReadCSV(r io.Reader) (*Dataset, error) {
	records, lines, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: empty file")
	}
	header, err := normalizeHeaders(records[0])
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	records[0] = header
	if len(records) == 1 {
		return nil, fmt.Errorf("read csv: no data rows")
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	columns := make(map[string][]string)
	for _, name := range df.Names() {
		columns[name] = df.Col(name).Records()
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("read csv: missing required column %q", name)
		}
	}

	obs := make([]*models.Observation, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		line := lines[i+1]
		o, err := parseRow(columns, i)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		obs = append(obs, o)
	}

	return New(obs)
}

// readRecords reads every record along with the file line it starts on.
func readRecords(r io.Reader) ([][]string, []int, error) {
	cr := csv.NewReader(r)
	var records [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return records, lines, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
}

// normalizeHeaders strips a UTF-8 byte order mark and rejects headers that
// name the same column once normalised.
func normalizeHeaders(raw []string) ([]string, error) {
	out := make([]string, len(raw))
	seen := make(map[string]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := normalizeHeader(h)
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("columns %q and %q both map to %q", prev, h, name)
		}
		seen[name] = h
		out[i] = name
	}
	return out, nil
}

func parseRow(columns map[string][]string, i int) (*models.Observation, error) {
	rawDate := strings.TrimSpace(columns[columnDate][i])
	date, err := time.Parse(models.DateLayout, rawDate)
	if err != nil {
		return nil, fmt.Errorf("date: invalid date %q (use YYYY-MM-DD)", rawDate)
	}
	o := models.NewObservation(date)

	for _, f := range models.AllFeatures {
		col, ok := columns[string(f)]
		if !ok {
			// Only day_of_week may be absent; it was derived above.
			continue
		}
		raw := strings.TrimSpace(col[i])
		if raw == "" {
			return nil, fmt.Errorf("%s: missing value", f)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: not a number: %q", f, raw)
		}
		if (f == models.FeatureCycle || f == models.FeatureDayOfWeek) && v != math.Trunc(v) {
			return nil, fmt.Errorf("%s: expected an integer, got %q", f, raw)
		}
		if err := o.SetValue(f, v); err != nil {
			return nil, err
		}
	}

	if notes, ok := columns[columnNotes]; ok {
		if n := strings.TrimSpace(notes[i]); n != "" {
			o.WithNotes(n)
		}
	}

	return o, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

// WriteCSV writes observations in canonical column order.
func WriteCSV(w io.Writer, obs []*models.Observation) error {
	cols := make([]series.Series, 0, len(models.AllFeatures)+2)

	dates := make([]string, len(obs))
	notes := make([]string, len(obs))
	for i, o := range obs {
		dates[i] = o.DateString()
		if o.Notes != nil {
			notes[i] = *o.Notes
		}
	}
	cols = append(cols, series.New(dates, series.String, columnDate))

	for _, f := range models.AllFeatures {
		values := make([]string, len(obs))
		for i, o := range obs {
			values[i] = strconv.FormatFloat(o.Value(f), 'f', -1, 64)
		}
		cols = append(cols, series.New(values, series.String, string(f)))
	}
	cols = append(cols, series.New(notes, series.String, columnNotes))

	df := dataframe.New(cols...)
	if df.Err != nil {
		return fmt.Errorf("build csv: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// SaveCSV writes observations to a CSV file on disk.
func SaveCSV(path string, obs []*models.Observation) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, obs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
