package timetable

import (
	"context"
	"fmt"
	"strings"
)

// SortField names a column sessions can be ordered by.
type SortField string

const (
	SortNone         SortField = ""    // insertion order
	SortByDay        SortField = "day" // day, then start
	SortByStart      SortField = "start"
	SortByCourse     SortField = "course"
	SortByInstructor SortField = "instructor"
	SortByRoom       SortField = "room"
	SortByEnrolled   SortField = "enrolled"
)

// ParseSortField parses a sort field name; empty means SortNone.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortNone, SortByDay, SortByStart, SortByCourse, SortByInstructor, SortByRoom, SortByEnrolled:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// Query filters, orders and pages a session listing. Zero values mean "no constraint".
type Query struct {
	Department string
	Day        *Weekday
	Instructor string
	Room       string
	Status     Status
	Search     string // substring of course code, course name or instructor
	Sort       SortField
	Desc       bool
	Page       int // 1-based; 0 disables paging
	PageSize   int
}

// Offset returns the row offset for the page.
func (q Query) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Paged reports whether the query limits the number of rows.
func (q Query) Paged() bool {
	return q.Page > 0 && q.PageSize > 0
}

// Page is a slice of a listing with its paging metadata.
type Page struct {
	Sessions   []*Session `json:"sessions"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalItems int        `json:"total_items"`
	TotalPages int        `json:"total_pages"`
}

// NewPage wraps sessions with metadata derived from q and the unpaged total.
func NewPage(sessions []*Session, q Query, total int) Page {
	p := Page{Sessions: sessions, TotalItems: total, Page: 1, PageSize: total, TotalPages: 1}
	if q.Paged() {
		p.Page = q.Page
		p.PageSize = q.PageSize
		p.TotalPages = (total + q.PageSize - 1) / q.PageSize
	}
	if p.TotalPages == 0 {
		p.TotalPages = 1
	}
	return p
}

// Repository defines the storage interface for sessions.
type Repository interface {
	// CreateSession adds a session and sets its ID.
	CreateSession(ctx context.Context, s *Session) error

	// CreateSessions adds multiple sessions in a batch.
	CreateSessions(ctx context.Context, sessions []*Session) error

	// ReplaceSessions deletes every session and adds the given ones atomically.
	ReplaceSessions(ctx context.Context, sessions []*Session) error

	// GetSession retrieves a session by ID.
	// Returns ErrSessionNotFound if it does not exist.
	GetSession(ctx context.Context, id int64) (*Session, error)

	// UpdateSession replaces every field of an existing session.
	// Returns ErrSessionNotFound if it does not exist.
	UpdateSession(ctx context.Context, s *Session) error

	// DeleteSession removes a session.
	// Returns ErrSessionNotFound if it does not exist.
	DeleteSession(ctx context.Context, id int64) error

	// ListSessions returns the sessions matching q, in q's order.
	// With no sort the order is insertion order.
	ListSessions(ctx context.Context, q Query) ([]*Session, error)

	// CountSessions returns how many sessions match q, ignoring paging.
	CountSessions(ctx context.Context, q Query) (int, error)

	// Close releases any resources held by the repository.
	Close() error
}
