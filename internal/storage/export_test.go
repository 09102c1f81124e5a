// ABOUTME: Tests for export, import, and migration.
// ABOUTME: Verifies JSON, YAML, Markdown, and CSV output and backend copies.
package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
)

func seedDB(t *testing.T, db *DB, days int) {
	t.Helper()
	for i := 0; i < days; i++ {
		if err := db.CreateObservation(testObservation(i)); err != nil {
			t.Fatalf("CreateObservation failed: %v", err)
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	db := setupTestDB(t)
	seedDB(t, db, 3)

	export, err := Export(db, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := Encode(export, "json")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var parsed ExportData
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if parsed.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", parsed.Version)
	}
	if parsed.Tool != "focus" {
		t.Errorf("Expected tool focus, got %s", parsed.Tool)
	}
	if len(parsed.Observations) != 3 {
		t.Fatalf("Expected 3 observations, got %d", len(parsed.Observations))
	}
	if parsed.Observations[0].DateString() != "2024-01-01" {
		t.Errorf("Expected oldest day first, got %s", parsed.Observations[0].DateString())
	}
}

func TestImportJSONRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seedDB(t, src, 5)

	export, err := src.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	data, err := Encode(export, "json")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	dst := setupTestDB(t)
	if _, err := ImportJSON(dst, data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	// Importing twice overwrites rather than duplicating.
	if _, err := ImportJSON(dst, data); err != nil {
		t.Fatalf("second ImportJSON failed: %v", err)
	}

	n, err := dst.CountObservations()
	if err != nil {
		t.Fatalf("CountObservations failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 observations, got %d", n)
	}

	want, _ := src.ListObservations(nil, 0)
	got, _ := dst.ListObservations(nil, 0)
	for i := range want {
		if got[i].ID != want[i].ID || got[i].FocusScore != want[i].FocusScore {
			t.Errorf("observation %d differs after import", i)
		}
	}
}

func TestImportJSONInvalid(t *testing.T) {
	db := setupTestDB(t)
	if _, err := ImportJSON(db, []byte("{not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestImportDataRejectsNullEntry(t *testing.T) {
	db := setupTestDB(t)

	_, err := ImportJSON(db, []byte(`{"observations":[null]}`))
	if err == nil || !strings.Contains(err.Error(), "observation 1 is null") {
		t.Fatalf("Expected null entry error, got %v", err)
	}
	if err := db.ImportData(nil); err == nil {
		t.Error("Expected error for nil export")
	}
}

func TestImportDataGeneratesMissingIDs(t *testing.T) {
	db := setupTestDB(t)

	first, second := testObservation(0), testObservation(1)
	first.ID, second.ID = uuid.Nil, uuid.Nil
	first.CreatedAt = time.Time{}
	if err := db.ImportData(NewExportData([]*models.Observation{first, second})); err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}

	got, err := db.ListObservations(nil, 0)
	if err != nil {
		t.Fatalf("ListObservations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 stored days, got %d", len(got))
	}
	if got[0].ID == uuid.Nil || got[1].ID == uuid.Nil || got[0].ID == got[1].ID {
		t.Errorf("Expected distinct generated IDs, got %s and %s", got[0].ID, got[1].ID)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("Expected a generated creation time")
	}
}

func TestImportDataIsAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	seedDB(t, db, 1)
	stored, err := db.GetObservationByDate(testStart)
	if err != nil {
		t.Fatalf("GetObservationByDate failed: %v", err)
	}

	// The second entry reuses the stored ID on a different day, which the
	// unique id column rejects after the first entry was written.
	fresh := testObservation(5)
	clash := testObservation(6)
	clash.ID = stored.ID
	err = db.ImportData(NewExportData([]*models.Observation{fresh, clash}))
	if err == nil {
		t.Fatal("Expected an error for a clashing ID")
	}

	n, _ := db.CountObservations()
	if n != 1 {
		t.Errorf("Expected the failed import to leave 1 day, got %d", n)
	}
}

func TestImportDataRejectsInvalidDayBeforeWriting(t *testing.T) {
	db := setupTestDB(t)

	bad := testObservation(1)
	bad.FocusScore = 42
	err := db.ImportData(NewExportData([]*models.Observation{testObservation(0), bad}))
	if err == nil || !strings.Contains(err.Error(), "focus_score") {
		t.Fatalf("Expected validation error, got %v", err)
	}
	n, _ := db.CountObservations()
	if n != 0 {
		t.Errorf("Expected nothing stored, got %d", n)
	}
}

func TestEncodeYAML(t *testing.T) {
	db := setupTestDB(t)
	seedDB(t, db, 2)

	export, err := Export(db, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := Encode(export, "yaml")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var parsed struct {
		Tool         string `yaml:"tool"`
		Observations []struct {
			ID      string             `yaml:"id"`
			Date    string             `yaml:"date"`
			Metrics map[string]float64 `yaml:"metrics"`
		} `yaml:"observations"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if parsed.Tool != "focus" {
		t.Errorf("Expected tool focus, got %s", parsed.Tool)
	}
	if len(parsed.Observations) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(parsed.Observations))
	}
	first := parsed.Observations[0]
	if first.Date != "2024-01-01" || len(first.ID) != 8 {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Metrics["sleep_hours"] != 7 {
		t.Errorf("Expected sleep_hours 7, got %v", first.Metrics["sleep_hours"])
	}
}

func TestEncodeMarkdownSince(t *testing.T) {
	db := setupTestDB(t)
	seedDB(t, db, 3)

	since := testStart.AddDate(0, 0, 1)
	export, err := Export(db, &since)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := Encode(export, "markdown")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	md := string(data)
	if !strings.HasPrefix(md, "# Focus Export - ") {
		t.Errorf("missing title: %q", md[:40])
	}
	if !strings.Contains(md, "| Date | sleep_hours |") {
		t.Error("missing table header")
	}
	if strings.Contains(md, "| 2024-01-01 |") {
		t.Error("day before since should be filtered")
	}
	if !strings.Contains(md, "| 2024-01-03 |") {
		t.Error("expected 2024-01-03 row")
	}
}

func TestMarkdownTableEmpty(t *testing.T) {
	md := MarkdownTable(nil, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	if !strings.Contains(md, "No observations recorded.") {
		t.Errorf("unexpected output: %s", md)
	}
}

func TestMarkdownTableEscapesNotes(t *testing.T) {
	o := testObservation(0).WithNotes("tired | wired\nlate night")
	md := MarkdownTable([]*models.Observation{o}, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	if !strings.Contains(md, `| tired \| wired late night |`) {
		t.Errorf("notes not escaped:\n%s", md)
	}
	lines := strings.Split(strings.TrimSpace(md), "\n")
	row := lines[len(lines)-1]
	header := lines[len(lines)-3]
	if countCells(row) != countCells(header) {
		t.Errorf("row has %d cells, header %d:\n%s", countCells(row), countCells(header), md)
	}
}

// countCells counts unescaped pipe separators in a Markdown table row.
func countCells(row string) int {
	return strings.Count(row, "|") - strings.Count(row, `\|`)
}

func TestEncodeCSVLoadsAsDataset(t *testing.T) {
	db := setupTestDB(t)
	seedDB(t, db, 4)

	export, err := Export(db, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := Encode(export, "csv")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	ds, err := dataset.ReadCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if ds.Len() != 4 {
		t.Errorf("Expected 4 rows, got %d", ds.Len())
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if _, err := Encode(NewExportData(nil), "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestMigrateData(t *testing.T) {
	src := setupTestDB(t)
	seedDB(t, src, 6)
	dst := setupTestDB(t)

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Observations != 6 {
		t.Errorf("Expected 6 migrated, got %d", summary.Observations)
	}

	n, _ := dst.CountObservations()
	if n != 6 {
		t.Errorf("Expected 6 in destination, got %d", n)
	}

	// A second migration collides on the first day.
	if _, err := MigrateData(src, dst); err == nil {
		t.Error("Expected error migrating into a non-empty destination")
	}
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()

	got, err := IsDirNonEmpty(filepath.Join(dir, "missing"))
	if err != nil || got {
		t.Errorf("missing dir: got %v, %v", got, err)
	}

	got, err = IsDirNonEmpty(dir)
	if err != nil || got {
		t.Errorf("empty dir: got %v, %v", got, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err = IsDirNonEmpty(dir)
	if err != nil || !got {
		t.Errorf("non-empty dir: got %v, %v", got, err)
	}
}
