package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/javiermolinar/aula/internal/timetable"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h30m"},
		{600, "10h"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestUsageBar(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "[░░░░░░░░░░]   0%"},
		{50, "[█████░░░░░]  50%"},
		{100, "[██████████] 100%"},
		{130, "[██████████] 100%"},
		{-5, "[░░░░░░░░░░]   0%"},
	}

	for _, tt := range tests {
		if got := UsageBar(tt.percent, 10); got != tt.want {
			t.Errorf("UsageBar(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestParseAdviceLine(t *testing.T) {
	tests := []struct {
		line       string
		wantPrefix string
		wantText   string
		wantHeader bool
	}{
		{"- move it", "    • ", "move it", false},
		{"## Summary", "  ", "Summary", true},
		{"#3 Move CS101 to 2:00 PM", "  #3 ", "Move CS101 to 2:00 PM", false},
		{"2. Swap rooms", "  2. ", "Swap rooms", false},
		{"Plain text", "  ", "Plain text", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			prefix, content, _, header := parseAdviceLine(tt.line, 72)
			if prefix != tt.wantPrefix || content != tt.wantText || header != tt.wantHeader {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)",
					prefix, content, header, tt.wantPrefix, tt.wantText, tt.wantHeader)
			}
		})
	}
}

func TestIsNumberedItem(t *testing.T) {
	tests := map[string]bool{
		"1. first":  true,
		"12. tenth": true,
		"0. zero":   false,
		"1)":        false,
		"a. b":      false,
	}
	for in, want := range tests {
		if got := isNumberedItem(in); got != want {
			t.Errorf("isNumberedItem(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStripMarkdownCodeBlocks(t *testing.T) {
	in := "before\n```json\n{\"a\":1}\n```\nafter"
	if got := stripMarkdownCodeBlocks(in); got != "before\nafter" {
		t.Errorf("got %q", got)
	}
}

func TestPrintAdviceWrapped(t *testing.T) {
	var buf bytes.Buffer
	PrintAdviceWrapped(&buf, "Two rooms clash on Monday.\n  #1 Move MATH201 to 11:00 AM so that Room 101 is free after CS101 ends", 40)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected wrapping, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "  #1 Move") {
		t.Errorf("got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "     ") {
		t.Errorf("continuation should be indented: %q", lines[2])
	}
}

func TestPrintConflicts_Summarizes(t *testing.T) {
	a := &timetable.Session{ID: 1, CourseCode: "CS101", Room: "Room 101", Day: timetable.Monday}
	b := &timetable.Session{ID: 2, CourseCode: "CS201", Room: "Room 101", Day: timetable.Monday}
	conflicts := make([]timetable.Conflict, 5)
	for i := range conflicts {
		conflicts[i] = timetable.Conflict{
			ID: i + 1, Type: timetable.RoomConflict, Day: timetable.Monday,
			Description: "clash", Sessions: [2]*timetable.Session{a, b},
		}
	}

	var buf bytes.Buffer
	PrintConflicts(&buf, conflicts, 3)
	out := buf.String()
	if strings.Count(out, "Room Conflict") != 3 {
		t.Errorf("want 3 conflicts shown:\n%s", out)
	}
	if !strings.Contains(out, "+2 more") {
		t.Errorf("want +2 more:\n%s", out)
	}
}

func TestFilterConflicts(t *testing.T) {
	conflicts := []timetable.Conflict{
		{ID: 1, Type: timetable.RoomConflict, Day: timetable.Monday},
		{ID: 2, Type: timetable.InstructorConflict, Day: timetable.Monday},
		{ID: 3, Type: timetable.RoomConflict, Day: timetable.Friday},
	}

	got, err := filterConflicts(conflicts, "fri", "room")
	if err != nil {
		t.Fatalf("filterConflicts failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("got %+v", got)
	}

	got, err = filterConflicts(conflicts, "", "instructor")
	if err != nil {
		t.Fatalf("filterConflicts failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("got %+v", got)
	}

	if _, err := filterConflicts(conflicts, "", "desk"); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := filterConflicts(conflicts, "sunday", ""); err == nil {
		t.Error("expected error for unknown day")
	}
}
