package timetable

import (
	"cmp"
	"fmt"
	"slices"
)

// ConflictType identifies which shared resource two sessions collide on.
type ConflictType string

const (
	RoomConflict       ConflictType = "Room Conflict"
	InstructorConflict ConflictType = "Instructor Conflict"
)

// SeverityHigh is the only severity the detector assigns.
const SeverityHigh = "high"

// Conflict is a pairwise incompatibility between two sessions on the same day.
// Conflicts are derived data: recompute them whenever the session list changes.
type Conflict struct {
	ID          int          `json:"id"` // 1-based position in detection order
	Type        ConflictType `json:"type"`
	Day         Weekday      `json:"day"`
	Description string       `json:"description"`
	Sessions    [2]*Session  `json:"sessions"`
	Severity    string       `json:"severity"`
}

// Involves reports whether the session with the given id is part of the conflict.
func (c Conflict) Involves(sessionID int64) bool {
	return c.Sessions[0] != nil && c.Sessions[0].ID == sessionID ||
		c.Sessions[1] != nil && c.Sessions[1].ID == sessionID
}

// DetectConflicts returns every room and instructor conflict in sessions.
//
// Only sessions on the same day are compared. A pair whose times overlap yields a room
// conflict when both use the same room and an instructor conflict when both have the
// same instructor; a pair can yield both. Rooms and instructors are matched on RoomID and
// InstructorID; zero ids are resolved from names with a private Directory, leaving the
// input untouched.
//
// Sessions are bucketed per (day, room) and (day, instructor) and each bucket is swept in
// start order, so only candidates whose intervals can intersect are compared. The result
// is ordered as a naive pairwise scan would discover it: by day, then by the input
// positions of the pair, room before instructor.
//
// The only error is a malformed time string.
func DetectConflicts(sessions []*Session) ([]Conflict, error) {
	entries, err := indexSessions(sessions)
	if err != nil {
		return nil, err
	}

	type roomKey struct {
		day Weekday
		id  RoomID
	}
	type instructorKey struct {
		day Weekday
		id  InstructorID
	}

	rooms := make(map[roomKey][]entry)
	instructors := make(map[instructorKey][]entry)
	for _, e := range entries {
		if e.room != 0 {
			k := roomKey{e.session.Day, e.room}
			rooms[k] = append(rooms[k], e)
		}
		if e.instructor != 0 {
			k := instructorKey{e.session.Day, e.instructor}
			instructors[k] = append(instructors[k], e)
		}
	}

	var found []hit
	for _, bucket := range rooms {
		found = sweep(bucket, RoomConflict, found)
	}
	for _, bucket := range instructors {
		found = sweep(bucket, InstructorConflict, found)
	}

	slices.SortFunc(found, func(a, b hit) int {
		return cmp.Or(
			cmp.Compare(a.day, b.day),
			cmp.Compare(a.i, b.i),
			cmp.Compare(a.j, b.j),
			cmp.Compare(typeOrder(a.kind), typeOrder(b.kind)),
		)
	})

	return buildConflicts(sessions, found), nil
}

// entry is a session with its parsed times, resolved keys and input position.
type entry struct {
	session    *Session
	pos        int
	start, end int
	room       RoomID
	instructor InstructorID
}

// hit is a detected pair, i < j being input positions.
type hit struct {
	day  Weekday
	i, j int
	kind ConflictType
}

func indexSessions(sessions []*Session) ([]entry, error) {
	keys := make([]*Session, 0, len(sessions))
	for _, s := range sessions {
		if s == nil {
			keys = append(keys, nil)
			continue
		}
		keys = append(keys, &Session{
			Room: s.Room, RoomID: s.RoomID,
			Instructor: s.Instructor, InstructorID: s.InstructorID,
		})
	}
	NewDirectory().ResolveAll(keys)

	entries := make([]entry, 0, len(sessions))
	for i, s := range sessions {
		if s == nil || !s.Day.Valid() {
			continue
		}
		start, end, err := s.Minutes()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{
			session:    s,
			pos:        i,
			start:      start,
			end:        end,
			room:       keys[i].RoomID,
			instructor: keys[i].InstructorID,
		})
	}
	return entries, nil
}

// sweep appends every overlapping pair in bucket. All entries share a day and a key.
func sweep(bucket []entry, kind ConflictType, found []hit) []hit {
	if len(bucket) < 2 {
		return found
	}
	slices.SortStableFunc(bucket, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.start, b.start), cmp.Compare(a.pos, b.pos))
	})

	for i := 0; i < len(bucket); i++ {
		a := bucket[i]
		for j := i + 1; j < len(bucket) && bucket[j].start < a.end; j++ {
			b := bucket[j]
			if !Overlaps(a.start, a.end, b.start, b.end) {
				continue
			}
			lo, hi := a.pos, b.pos
			if lo > hi {
				lo, hi = hi, lo
			}
			found = append(found, hit{day: a.session.Day, i: lo, j: hi, kind: kind})
		}
	}
	return found
}

func buildConflicts(sessions []*Session, found []hit) []Conflict {
	conflicts := make([]Conflict, 0, len(found))
	for n, h := range found {
		first, second := sessions[h.i], sessions[h.j]
		conflicts = append(conflicts, Conflict{
			ID:          n + 1,
			Type:        h.kind,
			Day:         h.day,
			Description: describe(h.kind, first, second),
			Sessions:    [2]*Session{first, second},
			Severity:    SeverityHigh,
		})
	}
	return conflicts
}

func typeOrder(t ConflictType) int {
	if t == RoomConflict {
		return 0
	}
	return 1
}

func describe(kind ConflictType, a, b *Session) string {
	if kind == RoomConflict {
		return fmt.Sprintf("%s is double-booked on %s: %s (%s) and %s (%s)",
			a.Room, a.Day, a.CourseCode, a.TimeRange(), b.CourseCode, b.TimeRange())
	}
	return fmt.Sprintf("%s teaches %s (%s) and %s (%s) at the same time on %s",
		a.Instructor, a.CourseCode, a.TimeRange(), b.CourseCode, b.TimeRange(), a.Day)
}

// DetectConflictsPairwise is the straightforward O(n²) scan per day.
// It produces the same result as DetectConflicts and is kept as a reference for tests
// and for tiny inputs.
func DetectConflictsPairwise(sessions []*Session) ([]Conflict, error) {
	entries, err := indexSessions(sessions)
	if err != nil {
		return nil, err
	}

	var found []hit
	for _, day := range Weekdays() {
		var group []entry
		for _, e := range entries {
			if e.session.Day == day {
				group = append(group, e)
			}
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if !Overlaps(a.start, a.end, b.start, b.end) {
					continue
				}
				if a.room != 0 && a.room == b.room {
					found = append(found, hit{day: day, i: a.pos, j: b.pos, kind: RoomConflict})
				}
				if a.instructor != 0 && a.instructor == b.instructor {
					found = append(found, hit{day: day, i: a.pos, j: b.pos, kind: InstructorConflict})
				}
			}
		}
	}

	return buildConflicts(sessions, found), nil
}

// Summarize splits conflicts into the first limit entries and the count of the rest,
// for front ends that show "+N more".
func Summarize(conflicts []Conflict, limit int) (shown []Conflict, more int) {
	if limit < 0 || len(conflicts) <= limit {
		return conflicts, 0
	}
	return conflicts[:limit], len(conflicts) - limit
}

// ConflictingSessionIDs returns the ids of every session involved in a conflict.
func ConflictingSessionIDs(conflicts []Conflict) map[int64]bool {
	ids := make(map[int64]bool, len(conflicts)*2)
	for _, c := range conflicts {
		for _, s := range c.Sessions {
			if s != nil {
				ids[s.ID] = true
			}
		}
	}
	return ids
}

// CountByType returns how many conflicts of each type exist.
func CountByType(conflicts []Conflict) map[ConflictType]int {
	counts := make(map[ConflictType]int, 2)
	for _, c := range conflicts {
		counts[c.Type]++
	}
	return counts
}
