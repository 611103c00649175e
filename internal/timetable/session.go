// Package timetable defines the core domain types for aula: class sessions,
// the conflicts between them and the week grid they are laid out on.
package timetable

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrEmptyCourseCode   = errors.New("course code cannot be empty")
	ErrInvalidTimeFormat = errors.New("time must be in H:MM AM|PM format")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrInvalidDay        = errors.New("day must be Monday through Friday")
	ErrInvalidStatus     = errors.New("status must be Active, Inactive or Cancelled")
	ErrInvalidCapacity   = errors.New("capacity and enrolled cannot be negative")
)

// Domain errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Weekday is a teaching day. Only Monday through Friday are valid.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Weekdays returns the teaching days in week order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// Valid reports whether d is Monday through Friday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

// String returns the full English day name.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short returns the three letter day abbreviation.
func (d Weekday) Short() string {
	if !d.Valid() {
		return "???"
	}
	return weekdayNames[d][:3]
}

// MarshalText implements encoding.TextMarshaler.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, ErrInvalidDay
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseWeekday parses a day name ("monday", "Mon", "FRIDAY").
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	for i, name := range weekdayNames {
		lower := strings.ToLower(name)
		if s == lower || s == lower[:3] {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// Status is the display state of a session. It does not affect conflict detection.
type Status string

const (
	StatusActive    Status = "Active"
	StatusInactive  Status = "Inactive"
	StatusCancelled Status = "Cancelled"
)

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCancelled:
		return true
	default:
		return false
	}
}

// RoomID is the canonical identity of a room. Zero means unresolved.
type RoomID int64

// InstructorID is the canonical identity of an instructor. Zero means unresolved.
type InstructorID int64

// Session is one scheduled meeting of a course on one day of the week.
type Session struct {
	ID           int64        `json:"id"`
	CourseCode   string       `json:"course_code"`
	CourseName   string       `json:"course_name"`
	Instructor   string       `json:"instructor"`
	InstructorID InstructorID `json:"instructor_id"`
	Department   string       `json:"department"`
	Day          Weekday      `json:"day"`
	StartTime    string       `json:"start_time"` // "H:MM AM|PM"
	EndTime      string       `json:"end_time"`   // "H:MM AM|PM"
	Room         string       `json:"room"`
	RoomID       RoomID       `json:"room_id"`
	Capacity     int          `json:"capacity"`
	Enrolled     int          `json:"enrolled"` // may exceed Capacity
	Status       Status       `json:"status"`
}

// New creates a validated active Session.
// day accepts any form ParseWeekday does; start and end must be "H:MM AM|PM" with end after start.
func New(courseCode, courseName, instructor, department, day, start, end, room string, capacity, enrolled int) (*Session, error) {
	d, err := ParseWeekday(day)
	if err != nil {
		return nil, err
	}

	s := &Session{
		CourseCode: strings.TrimSpace(courseCode),
		CourseName: strings.TrimSpace(courseName),
		Instructor: strings.TrimSpace(instructor),
		Department: strings.TrimSpace(department),
		Day:        d,
		StartTime:  strings.TrimSpace(start),
		EndTime:    strings.TrimSpace(end),
		Room:       strings.TrimSpace(room),
		Capacity:   capacity,
		Enrolled:   enrolled,
		Status:     StatusActive,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the session fields. Conflict detection relies on start preceding end,
// so every session entering a Scheduler passes through here.
func (s *Session) Validate() error {
	if s.CourseCode == "" {
		return ErrEmptyCourseCode
	}
	if !s.Day.Valid() {
		return ErrInvalidDay
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s.Status)
	}
	if s.Capacity < 0 || s.Enrolled < 0 {
		return ErrInvalidCapacity
	}

	start, err := ParseClock(s.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if end <= start {
		return ErrEndBeforeStart
	}
	return nil
}

// Minutes returns the parsed start and end in minutes since midnight.
func (s *Session) Minutes() (start, end int, err error) {
	start, err = ParseClock(s.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("session %d start: %w", s.ID, err)
	}
	end, err = ParseClock(s.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("session %d end: %w", s.ID, err)
	}
	return start, end, nil
}

// Duration returns the session length in minutes, 0 for malformed times.
func (s *Session) Duration() int {
	start, end, err := s.Minutes()
	if err != nil || end < start {
		return 0
	}
	return end - start
}

// Utilization returns enrolled as a percentage of capacity.
// Returns 0 when capacity is 0.
func (s *Session) Utilization() int {
	if s.Capacity == 0 {
		return 0
	}
	return (s.Enrolled * 100) / s.Capacity
}

// IsCancelled returns true if the session has cancelled status.
func (s *Session) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// TimeRange formats the session times as "9:00 AM-10:30 AM".
func (s *Session) TimeRange() string {
	return s.StartTime + "-" + s.EndTime
}

// Clone returns a copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
