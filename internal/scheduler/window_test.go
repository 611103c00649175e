package scheduler

import (
	"context"
	"testing"

	"github.com/javiermolinar/aula/internal/timetable"
)

func TestCheckWindow(t *testing.T) {
	s := newTestScheduler(t, Options{})

	tests := []struct {
		name       string
		start, end string
		wantOK     bool
	}{
		{"inside", "9:00 AM", "10:00 AM", true},
		{"last slot", "7:00 PM", "7:30 PM", true},
		{"too early", "7:30 AM", "8:30 AM", false},
		{"too late", "6:30 PM", "8:00 PM", false},
		{"unaligned", "9:15 AM", "10:00 AM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := mustSession(t, "CS101", "Dr. A", "Monday", tt.start, tt.end, "Room 101")
			reason := s.CheckWindow(sess)
			if (reason == "") != tt.wantOK {
				t.Errorf("CheckWindow() = %q, wantOK %v", reason, tt.wantOK)
			}
		})
	}
}

func TestCheckWindow_CoveringAllowsUnaligned(t *testing.T) {
	s := newTestScheduler(t, Options{Mode: timetable.LookupCovering})
	sess := mustSession(t, "CS101", "Dr. A", "Monday", "9:15 AM", "10:00 AM", "Room 101")
	if reason := s.CheckWindow(sess); reason != "" {
		t.Errorf("got %q, want fit", reason)
	}
}

func TestFreeSlots(t *testing.T) {
	slots, err := timetable.NewSlots("9:00 AM", "12:00 PM", 60)
	if err != nil {
		t.Fatalf("NewSlots: %v", err)
	}
	s := newTestScheduler(t, Options{Slots: slots})
	ctx := context.Background()

	a := mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101")
	b := mustSession(t, "CS201", "Dr. B", "Monday", "11:00 AM", "12:00 PM", "Room 202")
	if err := s.Load(ctx, []*timetable.Session{a, b}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// A new Dr. B session in Room 101: 9:00 is taken by the room, 11:00 by the instructor.
	candidate := mustSession(t, "CS301", "Dr. B", "Monday", "9:00 AM", "10:00 AM", "Room 101")
	free := s.FreeSlots(candidate, timetable.Monday)

	var labels []string
	for _, sl := range free {
		labels = append(labels, sl.Label)
	}
	want := []string{"10:00 AM", "12:00 PM"}
	if len(labels) != len(want) || labels[0] != want[0] || labels[1] != want[1] {
		t.Errorf("got %v, want %v", labels, want)
	}

	// a may stay where it is: it never clashes with itself.
	if got := s.FreeSlots(a, timetable.Monday); len(got) == 0 || got[0].Label != "9:00 AM" {
		t.Errorf("session should be free at its own slot, got %v", got)
	}
}
