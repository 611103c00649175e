package timetable

import (
	"cmp"
	"slices"
)

// InstructorLoad holds weekly teaching totals for one instructor.
type InstructorLoad struct {
	InstructorID InstructorID `json:"instructor_id"`
	Instructor   string       `json:"instructor"`
	Sessions     int          `json:"sessions"`
	Minutes      int          `json:"minutes"`
	Days         []Weekday    `json:"days"`
	Conflicts    int          `json:"conflicts"`
}

// Hours returns the weekly teaching time in hours.
func (l InstructorLoad) Hours() float64 {
	return float64(l.Minutes) / 60
}

// RoomUsage holds weekly booking totals for one room.
type RoomUsage struct {
	RoomID        RoomID `json:"room_id"`
	Room          string `json:"room"`
	Sessions      int    `json:"sessions"`
	BookedMinutes int    `json:"booked_minutes"`
	// Percent is booked time inside the grid window over the window's weekly minutes.
	Percent int `json:"percent"`
}

// Workload computes per-instructor teaching load, sorted by minutes then name.
// Cancelled sessions are ignored; conflicts count instructor conflicts only.
// Sessions must have resolved ids (see Directory).
func Workload(sessions []*Session, conflicts []Conflict) []InstructorLoad {
	loads := make(map[InstructorID]*InstructorLoad)
	days := make(map[InstructorID]map[Weekday]bool)

	for _, s := range sessions {
		if s == nil || s.IsCancelled() || s.InstructorID == 0 {
			continue
		}
		l, ok := loads[s.InstructorID]
		if !ok {
			l = &InstructorLoad{InstructorID: s.InstructorID, Instructor: s.Instructor}
			loads[s.InstructorID] = l
			days[s.InstructorID] = make(map[Weekday]bool)
		}
		l.Sessions++
		l.Minutes += s.Duration()
		days[s.InstructorID][s.Day] = true
	}

	for _, c := range conflicts {
		if c.Type != InstructorConflict || c.Sessions[0] == nil {
			continue
		}
		if l, ok := loads[c.Sessions[0].InstructorID]; ok {
			l.Conflicts++
		}
	}

	result := make([]InstructorLoad, 0, len(loads))
	for id, l := range loads {
		for _, d := range Weekdays() {
			if days[id][d] {
				l.Days = append(l.Days, d)
			}
		}
		result = append(result, *l)
	}
	slices.SortFunc(result, func(a, b InstructorLoad) int {
		return cmp.Or(cmp.Compare(b.Minutes, a.Minutes), cmp.Compare(a.Instructor, b.Instructor))
	})
	return result
}

// RoomUtilization computes how much of the grid window each room is booked, sorted by
// percent then name. Cancelled sessions are ignored.
// Sessions must have resolved ids (see Directory).
func RoomUtilization(sessions []*Session, slots []Slot) []RoomUsage {
	var windowStart, windowEnd int
	if len(slots) > 0 {
		windowStart = slots[0].Minutes
		windowEnd = slots[len(slots)-1].Minutes
		if len(slots) > 1 {
			windowEnd += slots[1].Minutes - slots[0].Minutes
		}
	}
	weekMinutes := (windowEnd - windowStart) * len(Weekdays())

	usage := make(map[RoomID]*RoomUsage)
	windowBooked := make(map[RoomID]int)
	for _, s := range sessions {
		if s == nil || s.IsCancelled() || s.RoomID == 0 {
			continue
		}
		u, ok := usage[s.RoomID]
		if !ok {
			u = &RoomUsage{RoomID: s.RoomID, Room: s.Room}
			usage[s.RoomID] = u
		}
		u.Sessions++
		u.BookedMinutes += s.Duration()

		start, end, err := s.Minutes()
		if err == nil {
			windowBooked[s.RoomID] += OverlapMinutes(start, end, windowStart, windowEnd)
		}
	}

	result := make([]RoomUsage, 0, len(usage))
	for id, u := range usage {
		if weekMinutes > 0 {
			u.Percent = (windowBooked[id] * 100) / weekMinutes
		}
		result = append(result, *u)
	}
	slices.SortFunc(result, func(a, b RoomUsage) int {
		return cmp.Or(cmp.Compare(b.Percent, a.Percent), cmp.Compare(a.Room, b.Room))
	})
	return result
}

// Totals holds headline numbers for a timetable.
type Totals struct {
	Sessions            int `json:"sessions"`
	Active              int `json:"active"`
	Cancelled           int `json:"cancelled"`
	Enrolled            int `json:"enrolled"`
	Capacity            int `json:"capacity"`
	OverCapacity        int `json:"over_capacity"`
	RoomConflicts       int `json:"room_conflicts"`
	InstructorConflicts int `json:"instructor_conflicts"`
}

// ComputeTotals counts sessions, seats and conflicts.
func ComputeTotals(sessions []*Session, conflicts []Conflict) Totals {
	var t Totals
	for _, s := range sessions {
		if s == nil {
			continue
		}
		t.Sessions++
		switch s.Status {
		case StatusActive:
			t.Active++
		case StatusCancelled:
			t.Cancelled++
		}
		t.Enrolled += s.Enrolled
		t.Capacity += s.Capacity
		if s.Enrolled > s.Capacity {
			t.OverCapacity++
		}
	}
	counts := CountByType(conflicts)
	t.RoomConflicts = counts[RoomConflict]
	t.InstructorConflicts = counts[InstructorConflict]
	return t
}
