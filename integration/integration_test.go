package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/javiermolinar/aula/internal/csvio"
	"github.com/javiermolinar/aula/internal/db"
	"github.com/javiermolinar/aula/internal/generator"
	"github.com/javiermolinar/aula/internal/httpapi"
	"github.com/javiermolinar/aula/internal/scheduler"
	"github.com/javiermolinar/aula/internal/timetable"
)

// openRepo creates a fresh file-backed repository with automatic cleanup.
func openRepo(t *testing.T, path string) *db.SQLite {
	t.Helper()
	repo, err := db.New(path)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func generate(t *testing.T, seed uint64, n int) []*timetable.Session {
	t.Helper()
	sessions, err := generator.Generate(generator.Options{Seed: seed, Sessions: n, UnalignedShare: 0.2})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	return sessions
}

// conflictKeys reduces conflicts to comparable (type, first id, second id) strings.
func conflictKeys(conflicts []timetable.Conflict) []string {
	keys := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		keys = append(keys, string(c.Type)+":"+c.Sessions[0].CourseCode+"/"+c.Sessions[1].CourseCode+"@"+c.Sessions[0].StartTime)
	}
	return keys
}

func TestTimetableSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aula.db")
	ctx := context.Background()

	first := scheduler.New(openRepo(t, path), scheduler.Options{})
	if err := first.Load(ctx, generate(t, 11, 60)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := conflictKeys(first.Conflicts())
	if len(want) == 0 {
		t.Fatal("expected the generated timetable to have conflicts")
	}

	second := scheduler.New(openRepo(t, path), scheduler.Options{})
	if err := second.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(second.All()) != 60 {
		t.Fatalf("got %d sessions after reopen, want 60", len(second.All()))
	}
	if got := conflictKeys(second.Conflicts()); !reflect.DeepEqual(got, want) {
		t.Errorf("conflicts changed after reopen:\ngot  %v\nwant %v", got, want)
	}

	// A session in a room and with an instructor nobody else uses must not
	// pick up the ids of stored sessions.
	extra := &timetable.Session{CourseCode: "NEW100", Instructor: "Dr. Nobody", Day: timetable.Monday,
		StartTime: "8:00 AM", EndTime: "7:00 PM", Room: "Annex 9", Status: timetable.StatusActive}
	if err := second.Add(ctx, extra); err != nil {
		t.Fatalf("Add after reopen failed: %v", err)
	}
	if got := conflictKeys(second.Conflicts()); !reflect.DeepEqual(got, want) {
		t.Errorf("adding an unrelated session changed conflicts:\ngot  %v\nwant %v", got, want)
	}
}

func TestCSVRoundTripKeepsConflicts(t *testing.T) {
	sessions := generate(t, 5, 80)
	want, err := timetable.DetectConflicts(sessions)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	var buf bytes.Buffer
	if err := csvio.WriteSessions(&buf, sessions); err != nil {
		t.Fatalf("WriteSessions failed: %v", err)
	}
	read, err := csvio.ReadSessions(&buf)
	if err != nil {
		t.Fatalf("ReadSessions failed: %v", err)
	}
	got, err := timetable.DetectConflicts(read)
	if err != nil {
		t.Fatalf("DetectConflicts failed: %v", err)
	}

	if !reflect.DeepEqual(conflictKeys(got), conflictKeys(want)) {
		t.Errorf("conflicts differ after csv round trip: got %d, want %d", len(got), len(want))
	}
}

func TestBucketedDetectionMatchesPairwise(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 42, 1234} {
		sessions := generate(t, seed, 400)

		fast, err := timetable.DetectConflicts(sessions)
		if err != nil {
			t.Fatalf("seed %d: DetectConflicts failed: %v", seed, err)
		}
		slow, err := timetable.DetectConflictsPairwise(sessions)
		if err != nil {
			t.Fatalf("seed %d: DetectConflictsPairwise failed: %v", seed, err)
		}
		if !reflect.DeepEqual(conflictKeys(fast), conflictKeys(slow)) {
			t.Errorf("seed %d: bucketed found %d conflicts, pairwise %d", seed, len(fast), len(slow))
		}
	}
}

func TestHTTPMutationsRecomputeConflicts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aula.db")
	ctx := context.Background()

	sched := scheduler.New(openRepo(t, path), scheduler.Options{})
	seed := []*timetable.Session{
		{CourseCode: "CS101", Instructor: "Dr. Smith", Day: timetable.Wednesday,
			StartTime: "9:00 AM", EndTime: "10:30 AM", Room: "Room 101", Status: timetable.StatusActive},
	}
	if err := sched.Load(ctx, seed); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	app := httpapi.New(sched, nil).App()

	body := `{"course_code":"CS150","instructor":"Dr. Lee","day":"Wednesday","start_time":"10:00 AM","end_time":"11:00 AM","room":" room  101 "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("got status %d, want 201", resp.StatusCode)
	}

	conflicts := sched.Conflicts()
	if len(conflicts) != 1 || conflicts[0].Type != timetable.RoomConflict {
		t.Fatalf("got %+v, want one room conflict from the normalised room name", conflicts)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/1", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("got status %d, want 204", resp.StatusCode)
	}
	if len(sched.Conflicts()) != 0 {
		t.Errorf("conflicts should clear after delete, got %d", len(sched.Conflicts()))
	}
}
