package scheduler

import (
	"github.com/javiermolinar/aula/internal/timetable"
)

// CheckWindow reports why a session falls outside the grid window, or "" when it fits.
// Sessions outside the window are still stored and still take part in conflict detection;
// they just cannot be drawn.
func (s *Scheduler) CheckWindow(sess *timetable.Session) string {
	start, end, err := sess.Minutes()
	if err != nil {
		return err.Error()
	}
	first, last := s.window()

	if start >= end {
		return "start time must be before end time"
	}
	if start < first {
		return "start time is before the first slot"
	}
	if end > last {
		return "end time is after the last slot"
	}
	if s.mode == timetable.LookupExact && !s.aligned(sess.StartTime) {
		return "start time is not on a slot boundary"
	}
	return ""
}

// window returns the first slot instant and the end of the last slot.
func (s *Scheduler) window() (first, last int) {
	first = s.slots[0].Minutes
	last = s.slots[len(s.slots)-1].Minutes
	if len(s.slots) > 1 {
		last += s.slots[1].Minutes - s.slots[0].Minutes
	}
	return first, last
}

func (s *Scheduler) aligned(label string) bool {
	for _, sl := range s.slots {
		if sl.Label == label {
			return true
		}
	}
	return false
}

// FreeSlots returns the slot starts on day where a session of duration minutes could
// run without clashing with the room or the instructor of sess. sess itself is ignored,
// so the result lists the places it could move to.
func (s *Scheduler) FreeSlots(sess *timetable.Session, day timetable.Weekday) []timetable.Slot {
	duration := sess.Duration()
	if duration == 0 {
		return nil
	}
	_, last := s.window()

	key := sess.Clone()
	s.mu.Lock()
	s.dir.Resolve(key)
	busy := s.busy(key, day)
	s.mu.Unlock()

	var free []timetable.Slot
	for _, sl := range s.slots {
		start, end := sl.Minutes, sl.Minutes+duration
		if end > last {
			break
		}
		if !clashes(busy, start, end) {
			free = append(free, sl)
		}
	}
	return free
}

type interval struct{ start, end int }

// busy collects the intervals on day held by the room or instructor of key. Callers hold mu.
func (s *Scheduler) busy(key *timetable.Session, day timetable.Weekday) []interval {
	var out []interval
	for _, other := range s.sessions {
		if other.ID == key.ID || other.Day != day {
			continue
		}
		sameRoom := key.RoomID != 0 && other.RoomID == key.RoomID
		sameInstructor := key.InstructorID != 0 && other.InstructorID == key.InstructorID
		if !sameRoom && !sameInstructor {
			continue
		}
		start, end, err := other.Minutes()
		if err != nil {
			continue
		}
		out = append(out, interval{start, end})
	}
	return out
}

func clashes(busy []interval, start, end int) bool {
	for _, b := range busy {
		if timetable.Overlaps(start, end, b.start, b.end) {
			return true
		}
	}
	return false
}
