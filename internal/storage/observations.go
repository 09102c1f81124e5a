// ABOUTME: Observation CRUD operations for SQLite storage.
// ABOUTME: Implements Repository methods keyed by UUID, prefix, or calendar day.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/focus/internal/models"
)

const observationColumns = `id, date, sleep_hours, exercise_minutes, screen_time_hours,
	study_hours, social_hours, nutrition_score, caffeine_mg, stress_level,
	day_of_week, cycle, focus_score, notes, created_at`

// CreateObservation stores a new observation. A second observation for the
// same day is rejected.
func (d *DB) CreateObservation(o *models.Observation) error {
	o.FillIdentity()
	if err := o.Validate(); err != nil {
		return fmt.Errorf("create observation %s: %w", o.DateString(), err)
	}
	query := `INSERT INTO observations (` + observationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := d.db.Exec(query, observationArgs(o)...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: observations.date") {
			return fmt.Errorf("create observation: %s already recorded", o.DateString())
		}
		return fmt.Errorf("create observation: %w", err)
	}
	return nil
}

// UpsertObservation inserts an observation or replaces the metrics of the
// existing row for the same day. The stored ID is kept on replace and copied
// back into o.
func (d *DB) UpsertObservation(o *models.Observation) error {
	return upsertObservation(d.db, o)
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func upsertObservation(q rowQuerier, o *models.Observation) error {
	o.FillIdentity()
	if err := o.Validate(); err != nil {
		return fmt.Errorf("upsert observation %s: %w", o.DateString(), err)
	}
	query := `INSERT INTO observations (` + observationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			sleep_hours = excluded.sleep_hours,
			exercise_minutes = excluded.exercise_minutes,
			screen_time_hours = excluded.screen_time_hours,
			study_hours = excluded.study_hours,
			social_hours = excluded.social_hours,
			nutrition_score = excluded.nutrition_score,
			caffeine_mg = excluded.caffeine_mg,
			stress_level = excluded.stress_level,
			day_of_week = excluded.day_of_week,
			cycle = excluded.cycle,
			focus_score = excluded.focus_score,
			notes = excluded.notes
		RETURNING id`
	var idStr string
	if err := q.QueryRow(query, observationArgs(o)...).Scan(&idStr); err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}
	if id, err := uuid.Parse(idStr); err == nil {
		o.ID = id
	}
	return nil
}

// GetObservation retrieves an observation by ID or ID prefix.
func (d *DB) GetObservation(idOrPrefix string) (*models.Observation, error) {
	id, err := d.resolveObservationID(idOrPrefix)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + observationColumns + ` FROM observations WHERE id = ?`
	o, err := scanObservation(d.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return o, err
}

// GetObservationByDate retrieves the observation recorded for a calendar day.
func (d *DB) GetObservationByDate(date time.Time) (*models.Observation, error) {
	day := models.TruncateDay(date).Format(models.DateLayout)
	query := `SELECT ` + observationColumns + ` FROM observations WHERE date = ?`
	o, err := scanObservation(d.db.QueryRow(query, day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, day)
	}
	return o, err
}

// ListObservations returns observations in date order, oldest first.
// since keeps days on or after it; a positive limit keeps the most recent
// limit days.
func (d *DB) ListObservations(since *time.Time, limit int) ([]*models.Observation, error) {
	query := `SELECT ` + observationColumns + ` FROM observations`
	var args []interface{}

	if since != nil {
		query += " WHERE date >= ?"
		args = append(args, models.TruncateDay(*since).Format(models.DateLayout))
	}
	query += " ORDER BY date DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	defer rows.Close()

	obs, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}
	return obs, nil
}

// DeleteObservation removes an observation by ID or prefix.
func (d *DB) DeleteObservation(idOrPrefix string) error {
	id, err := d.resolveObservationID(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete observation: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM observations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete observation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete observation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

// CountObservations returns the number of stored days.
func (d *DB) CountObservations() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM observations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}

// resolveObservationID finds the full ID from a prefix.
func (d *DB) resolveObservationID(idOrPrefix string) (string, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}

	rows, err := d.db.Query(`SELECT id FROM observations WHERE id LIKE ? || '%'`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve observation ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan observation ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve observation ID: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
	return matches[0], nil
}

func observationArgs(o *models.Observation) []interface{} {
	return []interface{}{
		o.ID.String(),
		o.DateString(),
		o.SleepHours,
		o.ExerciseMinutes,
		o.ScreenTimeHours,
		o.StudyHours,
		o.SocialHours,
		o.NutritionScore,
		o.CaffeineMg,
		o.StressLevel,
		o.DayOfWeek,
		o.Cycle,
		o.FocusScore,
		o.Notes,
		o.CreatedAt.Format(time.RFC3339),
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanObservation scans a single row into an Observation.
func scanObservation(row rowScanner) (*models.Observation, error) {
	var o models.Observation
	var idStr, date, createdAt string
	var notes sql.NullString

	err := row.Scan(&idStr, &date,
		&o.SleepHours, &o.ExerciseMinutes, &o.ScreenTimeHours,
		&o.StudyHours, &o.SocialHours, &o.NutritionScore, &o.CaffeineMg, &o.StressLevel,
		&o.DayOfWeek, &o.Cycle, &o.FocusScore, &notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan observation: %w", err)
	}

	o.ID, _ = uuid.Parse(idStr)
	o.Date, err = time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("scan observation %s: bad date %q", idStr, date)
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if notes.Valid {
		o.Notes = &notes.String
	}
	return &o, nil
}

// scanObservations scans multiple rows into a slice of Observations.
func scanObservations(rows *sql.Rows) ([]*models.Observation, error) {
	var obs []*models.Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}
