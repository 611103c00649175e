package db

import (
	"strings"

	"github.com/javiermolinar/aula/internal/timetable"
)

// whereClause turns the filters of q into a WHERE clause and its arguments.
func whereClause(q timetable.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q.Department != "" {
		conds = append(conds, "department = ? COLLATE NOCASE")
		args = append(args, q.Department)
	}
	if q.Day != nil {
		conds = append(conds, "day = ?")
		args = append(args, int(*q.Day))
	}
	if q.Instructor != "" {
		conds = append(conds, "instructor = ? COLLATE NOCASE")
		args = append(args, q.Instructor)
	}
	if q.Room != "" {
		conds = append(conds, "room = ? COLLATE NOCASE")
		args = append(args, q.Room)
	}
	if q.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(q.Status))
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + escapeLike(term) + "%"
		conds = append(conds, `(course_code LIKE ? ESCAPE '\' OR course_name LIKE ? ESCAPE '\' OR instructor LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var sortColumns = map[timetable.SortField][]string{
	timetable.SortByDay:        {"day", "start_minute"},
	timetable.SortByStart:      {"start_minute", "day"},
	timetable.SortByCourse:     {"course_code COLLATE NOCASE", "day", "start_minute"},
	timetable.SortByInstructor: {"instructor COLLATE NOCASE", "day", "start_minute"},
	timetable.SortByRoom:       {"room COLLATE NOCASE", "day", "start_minute"},
	timetable.SortByEnrolled:   {"enrolled"},
}

// orderClause returns the ORDER BY for q. Ties and unsorted queries fall back to id.
func orderClause(q timetable.Query) string {
	cols, ok := sortColumns[q.Sort]
	if !ok {
		return " ORDER BY id"
	}

	dir := " ASC"
	if q.Desc {
		dir = " DESC"
	}
	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, c+dir)
	}
	parts = append(parts, "id")
	return " ORDER BY " + strings.Join(parts, ", ")
}
