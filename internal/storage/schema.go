// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One observations row per calendar day, keyed by UUID.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		sleep_hours REAL NOT NULL,
		exercise_minutes REAL NOT NULL,
		screen_time_hours REAL NOT NULL,
		study_hours REAL NOT NULL,
		social_hours REAL NOT NULL,
		nutrition_score REAL NOT NULL,
		caffeine_mg REAL NOT NULL,
		stress_level REAL NOT NULL,
		day_of_week INTEGER NOT NULL,
		cycle INTEGER NOT NULL DEFAULT 0,
		focus_score REAL NOT NULL,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_observations_date ON observations(date DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
