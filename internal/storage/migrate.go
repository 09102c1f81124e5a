// ABOUTME: Data migration between focus storage backends.
// ABOUTME: Copies every observation from source to destination in date order.
package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Observations int
}

// MigrateData copies all observations from src to dst. The destination
// should be empty; an existing day in dst makes the migration fail.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	obs, err := src.ListObservations(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list source observations: %w", err)
	}

	for _, o := range obs {
		if err := dst.CreateObservation(o); err != nil {
			return summary, fmt.Errorf("create observation %s: %w", o.DateString(), err)
		}
		summary.Observations++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
