package timetable

// Overlaps reports whether two time ranges, in minutes since midnight, intersect.
// Two ranges overlap if: start1 < end2 AND start2 < end1.
// Back-to-back ranges (end1 == start2) do not overlap.
func Overlaps(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// OverlapMinutes returns the length of the intersection of two ranges.
// Returns 0 if there is no overlap.
func OverlapMinutes(start1, end1, start2, end2 int) int {
	overlapStart := max(start1, start2)
	overlapEnd := min(end1, end2)
	if overlapEnd <= overlapStart {
		return 0
	}
	return overlapEnd - overlapStart
}

// SessionsOverlap reports whether two sessions meet on the same day at intersecting times.
// Sessions with malformed times never overlap.
func SessionsOverlap(a, b *Session) bool {
	if a == nil || b == nil || a.Day != b.Day {
		return false
	}
	s1, e1, err := a.Minutes()
	if err != nil {
		return false
	}
	s2, e2, err := b.Minutes()
	if err != nil {
		return false
	}
	return Overlaps(s1, e1, s2, e2)
}
