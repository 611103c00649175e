package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/javiermolinar/aula/internal/db"
	"github.com/javiermolinar/aula/internal/timetable"
)

func newTestScheduler(t *testing.T, opts Options) *Scheduler {
	t.Helper()

	repo, err := db.New(db.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	return New(repo, opts)
}

func mustSession(t *testing.T, code, instructor, day, start, end, room string) *timetable.Session {
	t.Helper()
	s, err := timetable.New(code, code+" course", instructor, "Computer Science", day, start, end, room, 30, 10)
	if err != nil {
		t.Fatalf("timetable.New: %v", err)
	}
	return s
}

func TestLoad_DetectsConflicts(t *testing.T) {
	s := newTestScheduler(t, Options{})
	ctx := context.Background()

	err := s.Load(ctx, []*timetable.Session{
		mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:30 AM", "Room 101"),
		mustSession(t, "CS201", "Dr. B", "Monday", "10:00 AM", "11:00 AM", "Room 101"),
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	conflicts := s.Conflicts()
	if len(conflicts) != 1 || conflicts[0].Type != timetable.RoomConflict {
		t.Fatalf("got %+v, want one room conflict", conflicts)
	}
	if len(s.All()) != 2 {
		t.Errorf("got %d sessions, want 2", len(s.All()))
	}
	if s.Grid().Lookup(timetable.Monday, "9:00 AM") == nil {
		t.Error("grid not built")
	}
}

func TestLoad_Invalid(t *testing.T) {
	s := newTestScheduler(t, Options{})

	bad := &timetable.Session{CourseCode: "X", Day: timetable.Monday, StartTime: "9:00", EndTime: "10:00 AM", Status: timetable.StatusActive}
	err := s.Load(context.Background(), []*timetable.Session{bad})
	if !errors.Is(err, timetable.ErrInvalidTimeFormat) {
		t.Errorf("got %v, want ErrInvalidTimeFormat", err)
	}
}

func TestMutations_RecomputeConflicts(t *testing.T) {
	s := newTestScheduler(t, Options{})
	ctx := context.Background()

	a := mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101")
	if err := s.Add(ctx, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(s.Conflicts()) != 0 {
		t.Fatal("expected no conflicts with a single session")
	}
	v := s.Version()

	b := mustSession(t, "CS201", "Dr. A", "Monday", "9:30 AM", "10:30 AM", "Room 202")
	if err := s.Add(ctx, b); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := s.Conflicts(); len(got) != 1 || got[0].Type != timetable.InstructorConflict {
		t.Fatalf("after add: got %+v, want one instructor conflict", got)
	}
	if s.Version() <= v {
		t.Error("version did not advance")
	}

	b.StartTime = "10:00 AM"
	b.EndTime = "11:00 AM"
	if err := s.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := s.Conflicts(); len(got) != 0 {
		t.Fatalf("after update: got %d conflicts, want 0", len(got))
	}

	c := mustSession(t, "CS301", "Dr. C", "Monday", "9:00 AM", "9:30 AM", "Room 101")
	if err := s.Add(ctx, c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(s.Conflicts()) != 1 {
		t.Fatalf("after second add: got %d conflicts, want 1", len(s.Conflicts()))
	}

	if err := s.Remove(ctx, c.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(s.Conflicts()) != 0 {
		t.Fatalf("after remove: got %d conflicts, want 0", len(s.Conflicts()))
	}
}

func TestUpdate_RenameReresolves(t *testing.T) {
	s := newTestScheduler(t, Options{})
	ctx := context.Background()

	a := mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101")
	b := mustSession(t, "CS201", "Dr. B", "Monday", "9:00 AM", "10:00 AM", "Room 202")
	if err := s.Load(ctx, []*timetable.Session{a, b}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Conflicts()) != 0 {
		t.Fatal("unexpected conflicts")
	}

	moved, err := s.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	moved.Room = "room 101"
	if err := s.Update(ctx, moved); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := s.Conflicts()
	if len(got) != 1 || got[0].Type != timetable.RoomConflict {
		t.Fatalf("got %+v, want one room conflict", got)
	}
	if moved.RoomID != a.RoomID {
		t.Errorf("renamed room resolved to %d, want %d", moved.RoomID, a.RoomID)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestScheduler(t, Options{})

	sess := mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101")
	sess.ID = 77
	if err := s.Update(context.Background(), sess); !errors.Is(err, timetable.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestRemove_NotFound(t *testing.T) {
	s := newTestScheduler(t, Options{})
	if err := s.Remove(context.Background(), 1); !errors.Is(err, timetable.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestAdd_Invalid(t *testing.T) {
	s := newTestScheduler(t, Options{})

	bad := mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101")
	bad.EndTime = "8:00 AM"
	if err := s.Add(context.Background(), bad); !errors.Is(err, timetable.ErrEndBeforeStart) {
		t.Errorf("got %v, want ErrEndBeforeStart", err)
	}
	if s.Version() != 0 {
		t.Error("failed add must not recompute")
	}
}

func TestGridMode(t *testing.T) {
	ctx := context.Background()
	offGrid := func() []*timetable.Session {
		return []*timetable.Session{mustSession(t, "CS101", "Dr. A", "Tuesday", "9:15 AM", "10:15 AM", "Room 101")}
	}

	exact := newTestScheduler(t, Options{})
	if err := exact.Load(ctx, offGrid()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(exact.Grid().Unaligned()) != 1 {
		t.Error("exact grid should report the session as unaligned")
	}

	covering := newTestScheduler(t, Options{Mode: timetable.LookupCovering})
	if err := covering.Load(ctx, offGrid()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if covering.Grid().Lookup(timetable.Tuesday, "9:30 AM") == nil {
		t.Error("covering grid should place the session at 9:30")
	}
}

func TestPage(t *testing.T) {
	s := newTestScheduler(t, Options{})
	ctx := context.Background()

	var sessions []*timetable.Session
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		sessions = append(sessions, mustSession(t, "CS"+day[:3], "Dr. A", day, "9:00 AM", "10:00 AM", "Room 101"))
	}
	if err := s.Load(ctx, sessions); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	page, err := s.Page(ctx, timetable.Query{Sort: timetable.SortByDay, Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if page.TotalItems != 5 || page.TotalPages != 3 || len(page.Sessions) != 2 {
		t.Errorf("got %+v", page)
	}
	if page.Sessions[0].Day != timetable.Wednesday {
		t.Errorf("got first day %v, want Wednesday", page.Sessions[0].Day)
	}
}

func TestDerivedViews(t *testing.T) {
	s := newTestScheduler(t, Options{})
	ctx := context.Background()

	sessions := []*timetable.Session{
		mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101"),
		mustSession(t, "CS201", "Dr. A", "Monday", "9:30 AM", "11:00 AM", "Room 102"),
	}
	sessions[1].Department = "Mathematics"
	if err := s.Load(ctx, sessions); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	loads := s.Workload()
	if len(loads) != 1 || loads[0].Minutes != 150 || loads[0].Conflicts != 1 {
		t.Errorf("got workload %+v", loads)
	}
	if rooms := s.Rooms(); len(rooms) != 2 {
		t.Errorf("got %d rooms, want 2", len(rooms))
	}
	if totals := s.Totals(); totals.Sessions != 2 || totals.InstructorConflicts != 1 {
		t.Errorf("got totals %+v", totals)
	}
	depts := s.Departments()
	if len(depts) != 2 || depts[0] != "Computer Science" || depts[1] != "Mathematics" {
		t.Errorf("got departments %v", depts)
	}
}

func TestRefresh(t *testing.T) {
	repo, err := db.New(db.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	if err := repo.CreateSession(ctx, mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101")); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	s := New(repo, Options{})
	if len(s.All()) != 0 {
		t.Fatal("scheduler should start empty until refreshed")
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(s.All()) != 1 {
		t.Errorf("got %d sessions after refresh, want 1", len(s.All()))
	}
}

func TestRefresh_KeepsStoredIdentity(t *testing.T) {
	repo, err := db.New(db.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	first := New(repo, Options{})
	err = first.Load(ctx, []*timetable.Session{
		mustSession(t, "A1", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101"),
		mustSession(t, "B1", "Dr. B", "Monday", "9:00 AM", "10:00 AM", "Room 202"),
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	reopened := New(repo, Options{})
	if err := reopened.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	unrelated := mustSession(t, "C1", "Dr. C", "Monday", "9:30 AM", "10:30 AM", "Room 303")
	if err := reopened.Add(ctx, unrelated); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if n := len(reopened.Conflicts()); n != 0 {
		t.Fatalf("unrelated session produced %d conflicts: %+v", n, reopened.Conflicts())
	}
	for _, stored := range reopened.All()[:2] {
		if stored.RoomID == unrelated.RoomID || stored.InstructorID == unrelated.InstructorID {
			t.Errorf("C1 reused the ids of %s: room %d instructor %d", stored.CourseCode, unrelated.RoomID, unrelated.InstructorID)
		}
	}

	sameRoom := mustSession(t, "D1", "Dr. D", "Monday", "9:30 AM", "10:30 AM", " room 101")
	if err := reopened.Add(ctx, sameRoom); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	conflicts := reopened.Conflicts()
	if len(conflicts) != 1 || conflicts[0].Type != timetable.RoomConflict || conflicts[0].Sessions[0].CourseCode != "A1" {
		t.Errorf("want one room conflict with A1, got %+v", conflicts)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestScheduler(t, Options{})
	ctx := context.Background()

	sessions := make([]*timetable.Session, 8)
	for i := range sessions {
		sessions[i] = mustSession(t, "CS101", "Dr. A", "Monday", "9:00 AM", "10:00 AM", "Room 101")
	}

	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.Add(ctx, sess); err != nil {
				t.Errorf("Add failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = s.Conflicts()
			_ = s.Grid()
			_ = s.Workload()
		}()
	}
	wg.Wait()

	// 8 identical sessions: every pair clashes on room and instructor.
	if got, want := len(s.Conflicts()), 2*(8*7/2); got != want {
		t.Errorf("got %d conflicts, want %d", got, want)
	}
}
