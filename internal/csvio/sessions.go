// Package csvio reads and writes timetables as CSV.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/javiermolinar/aula/internal/timetable"
)

// ErrNoHeader is returned for an empty file.
var ErrNoHeader = errors.New("csv has no header row")

// RowError reports the first invalid row by the physical line it starts on.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// sessionRecord is one CSV row. Every column is read as text so conversion errors can
// name the line and column.
type sessionRecord struct {
	ID           string `csv:"id"`
	CourseCode   string `csv:"course_code"`
	CourseName   string `csv:"course_name"`
	Instructor   string `csv:"instructor"`
	InstructorID string `csv:"instructor_id"`
	Department   string `csv:"department"`
	Day          string `csv:"day"`
	StartTime    string `csv:"start_time"`
	EndTime      string `csv:"end_time"`
	Room         string `csv:"room"`
	RoomID       string `csv:"room_id"`
	Capacity     string `csv:"capacity"`
	Enrolled     string `csv:"enrolled"`
	Status       string `csv:"status"`
}

// LoadSessions reads sessions from a CSV file.
func LoadSessions(path string) ([]*timetable.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sessions, err := ReadSessions(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sessions, nil
}

// ReadSessions parses sessions from CSV with a header row. Columns are matched by name
// and may appear in any order; id, course_name, department, instructor_id, room_id,
// capacity, enrolled and status are optional. Semicolon-separated files are accepted.
// Every row is validated; the first bad row is reported as a *RowError.
func ReadSessions(r io.Reader) ([]*timetable.Session, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4096)
	if len(header) == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, ErrNoHeader
	}

	reader := csv.NewReader(br)
	reader.Comma = detectComma(header)
	reader.TrimLeadingSpace = true

	um, err := gocsv.NewUnmarshaller(reader, sessionRecord{})
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("parsing csv header: %w", err)
	}

	sessions := make([]*timetable.Session, 0)
	for {
		row, err := um.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		// FieldPos counts physical lines, so blank lines and quoted
		// newlines before the row are accounted for.
		line, _ := reader.FieldPos(0)

		rec := row.(sessionRecord)
		s, err := rec.session()
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// detectComma picks ';' when the header line uses it and has no ','.
func detectComma(peek []byte) rune {
	line, _, _ := bytes.Cut(peek, []byte("\n"))
	if bytes.ContainsRune(line, ';') && !bytes.ContainsRune(line, ',') {
		return ';'
	}
	return ','
}

func (r *sessionRecord) session() (*timetable.Session, error) {
	day, err := timetable.ParseWeekday(r.Day)
	if err != nil {
		return nil, err
	}
	status := timetable.StatusActive
	if strings.TrimSpace(r.Status) != "" {
		if status, err = timetable.ParseStatus(r.Status); err != nil {
			return nil, err
		}
	}

	s := &timetable.Session{
		CourseCode: strings.TrimSpace(r.CourseCode),
		CourseName: strings.TrimSpace(r.CourseName),
		Instructor: strings.TrimSpace(r.Instructor),
		Department: strings.TrimSpace(r.Department),
		Day:        day,
		StartTime:  strings.TrimSpace(r.StartTime),
		EndTime:    strings.TrimSpace(r.EndTime),
		Room:       strings.TrimSpace(r.Room),
		Status:     status,
	}

	ints := []struct {
		column string
		value  string
		set    func(int64)
	}{
		{"id", r.ID, func(v int64) { s.ID = v }},
		{"instructor_id", r.InstructorID, func(v int64) { s.InstructorID = timetable.InstructorID(v) }},
		{"room_id", r.RoomID, func(v int64) { s.RoomID = timetable.RoomID(v) }},
		{"capacity", r.Capacity, func(v int64) { s.Capacity = int(v) }},
		{"enrolled", r.Enrolled, func(v int64) { s.Enrolled = int(v) }},
	}
	for _, f := range ints {
		v, err := parseInt(f.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.column, err)
		}
		f.set(v)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%d cannot be negative", v)
	}
	return v, nil
}

func record(s *timetable.Session) *sessionRecord {
	itoa := func(v int64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatInt(v, 10)
	}
	return &sessionRecord{
		ID:           itoa(s.ID),
		CourseCode:   s.CourseCode,
		CourseName:   s.CourseName,
		Instructor:   s.Instructor,
		InstructorID: itoa(int64(s.InstructorID)),
		Department:   s.Department,
		Day:          s.Day.String(),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Room:         s.Room,
		RoomID:       itoa(int64(s.RoomID)),
		Capacity:     strconv.Itoa(s.Capacity),
		Enrolled:     strconv.Itoa(s.Enrolled),
		Status:       string(s.Status),
	}
}

// WriteSessions writes sessions as CSV with a header row.
func WriteSessions(w io.Writer, sessions []*timetable.Session) error {
	records := make([]*sessionRecord, 0, len(sessions))
	for _, s := range sessions {
		records = append(records, record(s))
	}
	return marshal(w, &records)
}

func marshal(w io.Writer, records any) error {
	out := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if err := gocsv.MarshalCSV(records, out); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	out.Flush()
	return out.Error()
}
