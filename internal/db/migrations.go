package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS sessions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			course_code   TEXT NOT NULL,
			course_name   TEXT NOT NULL DEFAULT '',
			instructor    TEXT NOT NULL DEFAULT '',
			instructor_id INTEGER NOT NULL DEFAULT 0,
			department    TEXT NOT NULL DEFAULT '',
			day           INTEGER NOT NULL CHECK(day BETWEEN 0 AND 4),
			start_time    TEXT NOT NULL,
			end_time      TEXT NOT NULL,
			start_minute  INTEGER NOT NULL,
			end_minute    INTEGER NOT NULL,
			room          TEXT NOT NULL DEFAULT '',
			room_id       INTEGER NOT NULL DEFAULT 0,
			capacity      INTEGER NOT NULL DEFAULT 0 CHECK(capacity >= 0),
			enrolled      INTEGER NOT NULL DEFAULT 0 CHECK(enrolled >= 0),
			status        TEXT NOT NULL DEFAULT 'Active' CHECK(status IN ('Active', 'Inactive', 'Cancelled')),
			CHECK(end_minute > start_minute)
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_day_start ON sessions(day, start_minute);
		CREATE INDEX IF NOT EXISTS idx_sessions_department ON sessions(department);
		CREATE INDEX IF NOT EXISTS idx_sessions_room ON sessions(room_id, day);
		CREATE INDEX IF NOT EXISTS idx_sessions_instructor ON sessions(instructor_id, day);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	return nil
}
