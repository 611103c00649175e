package csvio

import (
	"io"
	"strconv"

	"github.com/javiermolinar/aula/internal/timetable"
)

type conflictRecord struct {
	ID           int    `csv:"id"`
	Type         string `csv:"type"`
	Day          string `csv:"day"`
	Severity     string `csv:"severity"`
	FirstID      string `csv:"first_session_id"`
	FirstCourse  string `csv:"first_course"`
	FirstTime    string `csv:"first_time"`
	SecondID     string `csv:"second_session_id"`
	SecondCourse string `csv:"second_course"`
	SecondTime   string `csv:"second_time"`
	Description  string `csv:"description"`
}

// WriteConflicts writes one row per conflict.
func WriteConflicts(w io.Writer, conflicts []timetable.Conflict) error {
	records := make([]*conflictRecord, 0, len(conflicts))
	for _, c := range conflicts {
		a, b := c.Sessions[0], c.Sessions[1]
		if a == nil || b == nil {
			continue
		}
		records = append(records, &conflictRecord{
			ID:           c.ID,
			Type:         string(c.Type),
			Day:          c.Day.String(),
			Severity:     c.Severity,
			FirstID:      strconv.FormatInt(a.ID, 10),
			FirstCourse:  a.CourseCode,
			FirstTime:    a.TimeRange(),
			SecondID:     strconv.FormatInt(b.ID, 10),
			SecondCourse: b.CourseCode,
			SecondTime:   b.TimeRange(),
			Description:  c.Description,
		})
	}
	return marshal(w, &records)
}
