package csvio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/aula/internal/timetable"
)

const sample = `course_code,course_name,instructor,department,day,start_time,end_time,room,capacity,enrolled,status
CS101,Intro to CS,Dr. A,Computer Science,Monday,9:00 AM,10:30 AM,Room 101,40,35,Active
CS201,Data Structures,Dr. B,Computer Science,Monday,10:00 AM,11:00 AM,Room 101,30,31,
`

func TestReadSessions(t *testing.T) {
	sessions, err := ReadSessions(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	first := sessions[0]
	if first.CourseCode != "CS101" || first.Day != timetable.Monday || first.StartTime != "9:00 AM" ||
		first.Capacity != 40 || first.Enrolled != 35 || first.Status != timetable.StatusActive {
		t.Errorf("got %+v", first)
	}
	if sessions[1].Status != timetable.StatusActive {
		t.Errorf("empty status should default to Active, got %q", sessions[1].Status)
	}

	conflicts, err := timetable.DetectConflicts(sessions)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != timetable.RoomConflict {
		t.Errorf("got %+v, want one room conflict", conflicts)
	}
}

func TestReadSessions_OptionalColumns(t *testing.T) {
	input := `day,start_time,end_time,course_code,room,room_id,instructor,instructor_id,id
tue,1:00 PM,2:00 PM,MATH1,Hall,4,Prof. X,9,12
`
	sessions, err := ReadSessions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSessions failed: %v", err)
	}
	s := sessions[0]
	if s.ID != 12 || s.RoomID != 4 || s.InstructorID != 9 || s.Day != timetable.Tuesday {
		t.Errorf("got %+v", s)
	}
}

func TestReadSessions_Semicolon(t *testing.T) {
	input := "course_code;day;start_time;end_time;room;instructor\nCS1;Friday;8:00 AM;9:00 AM;R1;Dr. A\n"
	sessions, err := ReadSessions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Room != "R1" {
		t.Errorf("got %+v", sessions)
	}
}

func TestReadSessions_Errors(t *testing.T) {
	header := "course_code,day,start_time,end_time,room,instructor,capacity\n"
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantErr  error
	}{
		{"bad time", header + "CS1,Monday,9:00 AM,10:00 AM,R1,Dr. A,10\nCS2,Monday,9am,10:00 AM,R1,Dr. A,10\n", 3, timetable.ErrInvalidTimeFormat},
		{"weekend", header + "CS1,Saturday,9:00 AM,10:00 AM,R1,Dr. A,10\n", 2, timetable.ErrInvalidDay},
		{"reversed", header + "CS1,Monday,10:00 AM,9:00 AM,R1,Dr. A,10\n", 2, timetable.ErrEndBeforeStart},
		{"no code", header + ",Monday,9:00 AM,10:00 AM,R1,Dr. A,10\n", 2, timetable.ErrEmptyCourseCode},
		{"bad number", header + "CS1,Monday,9:00 AM,10:00 AM,R1,Dr. A,many\n", 2, nil},
		{"after blank lines", header + "CS1,Monday,9:00 AM,10:00 AM,R1,Dr. A,10\n\n\nCS2,Friday,9:00 AM,8:00 AM,R1,Dr. A,10\n", 5, timetable.ErrEndBeforeStart},
		{"after quoted newline", header + "CS1,Monday,9:00 AM,10:00 AM,\"Annex\nRoom 1\",Dr. A,10\nCS2,Sunday,9:00 AM,10:00 AM,R1,Dr. A,10\n", 4, timetable.ErrInvalidDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSessions(strings.NewReader(tt.input))
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("got %v, want *RowError", err)
			}
			if rowErr.Line != tt.wantLine {
				t.Errorf("got line %d, want %d", rowErr.Line, tt.wantLine)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadSessions_Empty(t *testing.T) {
	for _, in := range []string{"", "\n\n"} {
		if _, err := ReadSessions(strings.NewReader(in)); !errors.Is(err, ErrNoHeader) {
			t.Errorf("ReadSessions(%q) = %v, want ErrNoHeader", in, err)
		}
	}

	sessions, err := ReadSessions(strings.NewReader("course_code,day,start_time,end_time\n"))
	if err != nil || len(sessions) != 0 {
		t.Errorf("header only: got %d sessions, err %v", len(sessions), err)
	}
}

func TestWriteSessions_RoundTrip(t *testing.T) {
	want, err := ReadSessions(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadSessions failed: %v", err)
	}
	want[0].ID = 1
	want[1].ID = 2
	want[1].RoomID = 3
	want[1].Status = timetable.StatusCancelled

	var buf bytes.Buffer
	if err := WriteSessions(&buf, want); err != nil {
		t.Fatalf("WriteSessions failed: %v", err)
	}

	got, err := ReadSessions(&buf)
	if err != nil {
		t.Fatalf("ReadSessions of written csv failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(got), len(want))
	}
	for i := range want {
		if *got[i] != *want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetable.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	sessions, err := LoadSessions(path)
	if err != nil {
		t.Fatalf("LoadSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("got %d sessions, want 2", len(sessions))
	}

	if _, err := LoadSessions(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteConflicts(t *testing.T) {
	sessions, err := ReadSessions(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadSessions failed: %v", err)
	}
	sessions[0].ID = 1
	sessions[1].ID = 2
	conflicts, err := timetable.DetectConflicts(sessions)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteConflicts(&buf, conflicts); err != nil {
		t.Fatalf("WriteConflicts failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header and one row:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "id,type,day,severity,first_session_id") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,Room Conflict,Monday,high,1,CS101,9:00 AM-10:30 AM,2,CS201") {
		t.Errorf("unexpected row %q", lines[1])
	}
}
