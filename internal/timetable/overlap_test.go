package timetable

import "testing"

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		start1, end1, s2, end2 int
		want                   bool
	}{
		{"identical", 540, 630, 540, 630, true},
		{"partial", 540, 630, 600, 690, true},
		{"contained", 540, 720, 600, 630, true},
		{"back to back", 540, 630, 630, 720, false},
		{"back to back reversed", 630, 720, 540, 630, false},
		{"disjoint", 540, 600, 700, 760, false},
		{"one minute overlap", 540, 631, 630, 720, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.start1, tt.end1, tt.s2, tt.end2); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Symmetric.
			if got := Overlaps(tt.s2, tt.end2, tt.start1, tt.end1); got != tt.want {
				t.Errorf("Overlaps() swapped = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlapMinutes(t *testing.T) {
	tests := []struct {
		name                   string
		start1, end1, s2, end2 int
		want                   int
	}{
		{"partial", 540, 630, 600, 690, 30},
		{"contained", 540, 720, 600, 630, 30},
		{"touching", 540, 630, 630, 720, 0},
		{"disjoint", 540, 600, 700, 760, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverlapMinutes(tt.start1, tt.end1, tt.s2, tt.end2); got != tt.want {
				t.Errorf("OverlapMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSessionsOverlap(t *testing.T) {
	a := &Session{Day: Monday, StartTime: "9:00 AM", EndTime: "10:30 AM"}
	b := &Session{Day: Monday, StartTime: "10:00 AM", EndTime: "11:30 AM"}
	c := &Session{Day: Tuesday, StartTime: "10:00 AM", EndTime: "11:30 AM"}
	bad := &Session{Day: Monday, StartTime: "ten", EndTime: "11:30 AM"}

	if !SessionsOverlap(a, b) {
		t.Error("expected a and b to overlap")
	}
	if SessionsOverlap(a, c) {
		t.Error("sessions on different days must not overlap")
	}
	if SessionsOverlap(a, bad) {
		t.Error("malformed session must not overlap")
	}
	if SessionsOverlap(a, nil) {
		t.Error("nil session must not overlap")
	}
}
