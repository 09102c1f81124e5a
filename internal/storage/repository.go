// ABOUTME: Repository interface for observation storage.
// ABOUTME: Defines the contract shared by the SQLite and Charm backends.
package storage

import (
	"errors"
	"time"

	"github.com/harperreed/focus/internal/models"
)

// ErrNotFound is returned when no observation matches an ID, prefix, or date.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for daily observations.
type Repository interface {
	// Observation operations
	CreateObservation(o *models.Observation) error
	UpsertObservation(o *models.Observation) error
	GetObservation(idOrPrefix string) (*models.Observation, error)
	GetObservationByDate(date time.Time) (*models.Observation, error)
	ListObservations(since *time.Time, limit int) ([]*models.Observation, error)
	DeleteObservation(idOrPrefix string) error
	CountObservations() (int, error)

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}
