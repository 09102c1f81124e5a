// ABOUTME: CLI commands for exporting and importing focus data.
// ABOUTME: Supports JSON, YAML, Markdown, and CSV export; JSON or CSV import.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/storage"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export focus data",
	Long: `Export stored observations in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown table (for documentation/sharing)
  csv        The CSV layout 'focus analyze' and 'focus load' read

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include days on or after this date (YYYY-MM-DD)

EXAMPLES:

  focus export json                         # Export all data as JSON
  focus export json -o backup.json          # Save to file
  focus export yaml                         # Export as YAML
  focus export markdown --since 2024-01-01  # Days from 2024 onward
  focus export csv -o data.csv              # Round-trips through analyze`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown", "csv"},
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := parseDate(exportSince)
		if err != nil {
			return err
		}
		export, err := storage.Export(repo, since)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		data, err := storage.Encode(export, args[0])
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported %d days to %s", len(export.Observations), exportOutput))
			return nil
		}

		_, err = cmd.OutOrStdout().Write(data)
		if err == nil && !bytes.HasSuffix(data, []byte("\n")) {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import focus data from JSON or CSV",
	Long: `Import observations from a JSON backup made with 'focus export json'
or from a CSV file. Days already stored are overwritten with the imported
values; IDs from a JSON backup are kept for new days.

EXAMPLES:

  focus import backup.json
  focus import data.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		var export *storage.ExportData
		if strings.EqualFold(filepath.Ext(filename), ".csv") {
			ds, err := dataset.LoadCSV(filename)
			if err != nil {
				return err
			}
			export = storage.NewExportData(ds.Observations())
			if err := repo.ImportData(export); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
		} else {
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			export, err = storage.ImportJSON(repo, data)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Imported %d days from %s", len(export.Observations), filename))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include days since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
