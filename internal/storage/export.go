// ABOUTME: Export and import functionality for stored observations.
// ABOUTME: Supports JSON, YAML, Markdown, and CSV export formats.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for focus data.
type ExportData struct {
	Version      string                `json:"version" yaml:"version"`
	ExportedAt   time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool         string                `json:"tool" yaml:"tool"`
	Observations []*models.Observation `json:"observations" yaml:"observations"`
}

// NewExportData wraps observations in the current export envelope.
func NewExportData(obs []*models.Observation) *ExportData {
	return &ExportData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		Tool:         "focus",
		Observations: obs,
	}
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return Export(d, nil)
}

// ImportData imports data from an export file in one transaction. Days
// already stored are overwritten; nothing is written if any entry fails.
func (d *DB) ImportData(data *ExportData) error {
	if err := PrepareImport(data); err != nil {
		return err
	}
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	for _, o := range data.Observations {
		if err := upsertObservation(tx, o); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("import observation %s: %w", o.DateString(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// PrepareImport checks every entry of an export before anything is written.
// Null entries and invalid days are rejected; missing IDs are generated.
func PrepareImport(data *ExportData) error {
	if data == nil {
		return errors.New("import: no data")
	}
	for i, o := range data.Observations {
		if o == nil {
			return fmt.Errorf("import: observation %d is null", i+1)
		}
		o.FillIdentity()
		if err := o.Validate(); err != nil {
			return fmt.Errorf("import observation %s: %w", o.DateString(), err)
		}
	}
	return nil
}

// Export collects the stored days on or after since, or every day when
// since is nil.
func Export(repo Repository, since *time.Time) (*ExportData, error) {
	obs, err := repo.ListObservations(since, 0)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	return NewExportData(obs), nil
}

// Encode renders an export as json, yaml, markdown (or md), or csv.
func Encode(data *ExportData, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(data, "", "  ")
	case "yaml":
		return MarshalYAML(data)
	case "markdown", "md":
		return []byte(MarkdownTable(data.Observations, data.ExportedAt)), nil
	case "csv":
		var buf bytes.Buffer
		if err := dataset.WriteCSV(&buf, data.Observations); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (use json, yaml, markdown, or csv)", format)
	}
}

// MarshalYAML renders an export with dates as plain YYYY-MM-DD strings and
// short IDs.
func MarshalYAML(data *ExportData) ([]byte, error) {
	yamlData := struct {
		Version      string            `yaml:"version"`
		ExportedAt   string            `yaml:"exported_at"`
		Tool         string            `yaml:"tool"`
		Observations []yamlObservation `yaml:"observations"`
	}{
		Version:      data.Version,
		ExportedAt:   data.ExportedAt.Format(time.RFC3339),
		Tool:         data.Tool,
		Observations: make([]yamlObservation, 0, len(data.Observations)),
	}

	for _, o := range data.Observations {
		yo := yamlObservation{
			ID:      o.ID.String()[:8],
			Date:    o.DateString(),
			Metrics: make(map[string]float64, len(models.AllFeatures)),
		}
		for _, f := range models.AllFeatures {
			yo.Metrics[string(f)] = o.Value(f)
		}
		if o.Notes != nil {
			yo.Notes = *o.Notes
		}
		yamlData.Observations = append(yamlData.Observations, yo)
	}

	return yaml.Marshal(yamlData)
}

type yamlObservation struct {
	ID      string             `yaml:"id"`
	Date    string             `yaml:"date"`
	Metrics map[string]float64 `yaml:"metrics"`
	Notes   string             `yaml:"notes,omitempty"`
}

// MarkdownTable renders observations as a titled Markdown table.
func MarkdownTable(obs []*models.Observation, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Focus Export - %s\n\n", now.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(obs) == 0 {
		sb.WriteString("No observations recorded.\n")
		return sb.String()
	}

	sb.WriteString("| Date |")
	for _, f := range models.AllFeatures {
		sb.WriteString(" " + string(f) + " |")
	}
	sb.WriteString(" Notes |\n|------|")
	sb.WriteString(strings.Repeat("---|", len(models.AllFeatures)))
	sb.WriteString("-------|\n")

	for _, o := range obs {
		sb.WriteString("| " + o.DateString() + " |")
		for _, f := range models.AllFeatures {
			sb.WriteString(fmt.Sprintf(" %g |", o.Value(f)))
		}
		notes := ""
		if o.Notes != nil {
			notes = markdownCell(*o.Notes)
		}
		sb.WriteString(" " + notes + " |\n")
	}
	return sb.String()
}

// markdownCell escapes pipes and flattens newlines so text stays in one
// table cell.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, `|`, `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// ImportJSON parses a JSON export and imports it into repo.
func ImportJSON(repo Repository, raw []byte) (*ExportData, error) {
	data, err := ParseJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := repo.ImportData(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ParseJSON decodes an export file.
func ParseJSON(data []byte) (*ExportData, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return &exportData, nil
}
