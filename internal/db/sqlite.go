// Package db provides the SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/aula/internal/timetable"
)

// MemoryDSN opens a private in-memory database that lives as long as the repository.
const MemoryDSN = ":memory:"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLite implements timetable.Repository using SQLite.
type SQLite struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*SQLite)(nil)

// New creates a new SQLite repository and runs migrations.
// Use MemoryDSN for a throwaway timetable.
func New(dsn string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate database, so pin the pool to one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// sessionRow is the table layout of a session.
type sessionRow struct {
	ID           int64  `db:"id"`
	CourseCode   string `db:"course_code"`
	CourseName   string `db:"course_name"`
	Instructor   string `db:"instructor"`
	InstructorID int64  `db:"instructor_id"`
	Department   string `db:"department"`
	Day          int    `db:"day"`
	StartTime    string `db:"start_time"`
	EndTime      string `db:"end_time"`
	StartMinute  int    `db:"start_minute"`
	EndMinute    int    `db:"end_minute"`
	Room         string `db:"room"`
	RoomID       int64  `db:"room_id"`
	Capacity     int    `db:"capacity"`
	Enrolled     int    `db:"enrolled"`
	Status       string `db:"status"`
}

const sessionColumns = `id, course_code, course_name, instructor, instructor_id, department, day,
	start_time, end_time, start_minute, end_minute, room, room_id, capacity, enrolled, status`

func toRow(s *timetable.Session) (sessionRow, error) {
	start, end, err := s.Minutes()
	if err != nil {
		return sessionRow{}, err
	}
	return sessionRow{
		ID:           s.ID,
		CourseCode:   s.CourseCode,
		CourseName:   s.CourseName,
		Instructor:   s.Instructor,
		InstructorID: int64(s.InstructorID),
		Department:   s.Department,
		Day:          int(s.Day),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		StartMinute:  start,
		EndMinute:    end,
		Room:         s.Room,
		RoomID:       int64(s.RoomID),
		Capacity:     s.Capacity,
		Enrolled:     s.Enrolled,
		Status:       string(s.Status),
	}, nil
}

func (r sessionRow) session() *timetable.Session {
	return &timetable.Session{
		ID:           r.ID,
		CourseCode:   r.CourseCode,
		CourseName:   r.CourseName,
		Instructor:   r.Instructor,
		InstructorID: timetable.InstructorID(r.InstructorID),
		Department:   r.Department,
		Day:          timetable.Weekday(r.Day),
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Room:         r.Room,
		RoomID:       timetable.RoomID(r.RoomID),
		Capacity:     r.Capacity,
		Enrolled:     r.Enrolled,
		Status:       timetable.Status(r.Status),
	}
}

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertQuery = `
	INSERT INTO sessions (
		id, course_code, course_name, instructor, instructor_id, department, day,
		start_time, end_time, start_minute, end_minute, room, room_id, capacity, enrolled, status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// insert writes s and sets its ID. A zero ID lets SQLite assign one.
func insert(ctx context.Context, e execer, s *timetable.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("session %q: %w", s.CourseCode, err)
	}
	row, err := toRow(s)
	if err != nil {
		return err
	}

	var id any
	if row.ID != 0 {
		id = row.ID
	}
	result, err := e.ExecContext(ctx, insertQuery,
		id,
		row.CourseCode,
		row.CourseName,
		row.Instructor,
		row.InstructorID,
		row.Department,
		row.Day,
		row.StartTime,
		row.EndTime,
		row.StartMinute,
		row.EndMinute,
		row.Room,
		row.RoomID,
		row.Capacity,
		row.Enrolled,
		row.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting session %q: %w", s.CourseCode, err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	s.ID = newID
	return nil
}

// CreateSession adds a new session to the repository.
func (s *SQLite) CreateSession(ctx context.Context, session *timetable.Session) error {
	return insert(ctx, s.db, session)
}

// CreateSessions adds multiple sessions in a batch using a transaction.
func (s *SQLite) CreateSessions(ctx context.Context, sessions []*timetable.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, session := range sessions {
			if err := insert(ctx, tx, session); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceSessions deletes all sessions and inserts the given ones in one transaction.
func (s *SQLite) ReplaceSessions(ctx context.Context, sessions []*timetable.Session) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return fmt.Errorf("clearing sessions: %w", err)
		}
		for _, session := range sessions {
			if err := insert(ctx, tx, session); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLite) GetSession(ctx context.Context, id int64) (*timetable.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", timetable.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return row.session(), nil
}

// UpdateSession replaces every field of the session with the same ID.
func (s *SQLite) UpdateSession(ctx context.Context, session *timetable.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	row, err := toRow(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions SET
			course_code = :course_code, course_name = :course_name,
			instructor = :instructor, instructor_id = :instructor_id,
			department = :department, day = :day,
			start_time = :start_time, end_time = :end_time,
			start_minute = :start_minute, end_minute = :end_minute,
			room = :room, room_id = :room_id,
			capacity = :capacity, enrolled = :enrolled, status = :status
		WHERE id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %d", timetable.ErrSessionNotFound, session.ID)
	}
	return nil
}

// DeleteSession removes a session.
func (s *SQLite) DeleteSession(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %d", timetable.ErrSessionNotFound, id)
	}
	return nil
}

// ListSessions returns the sessions matching q.
func (s *SQLite) ListSessions(ctx context.Context, q timetable.Query) ([]*timetable.Session, error) {
	where, args := whereClause(q)
	query := `SELECT ` + sessionColumns + ` FROM sessions` + where + orderClause(q)
	if q.Paged() {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.PageSize, q.Offset())
	}

	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}

	sessions := make([]*timetable.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.session())
	}
	return sessions, nil
}

// CountSessions returns the number of sessions matching q, ignoring paging.
func (s *SQLite) CountSessions(ctx context.Context, q timetable.Query) (int, error) {
	where, args := whereClause(q)

	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`+where, args...); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}
