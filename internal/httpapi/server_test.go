package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/aula/internal/db"
	"github.com/javiermolinar/aula/internal/scheduler"
	"github.com/javiermolinar/aula/internal/timetable"
)

func newTestServer(t *testing.T) (*Server, *scheduler.Scheduler) {
	t.Helper()

	repo, err := db.New(db.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	sched := scheduler.New(repo, scheduler.Options{})
	sessions := []*timetable.Session{
		mustSession(t, "CS101", "Dr. Smith", "Computer Science", "Monday", "9:00 AM", "10:30 AM", "Room 101"),
		mustSession(t, "MATH201", "Dr. Jones", "Mathematics", "Monday", "10:00 AM", "11:00 AM", "Room 101"),
		mustSession(t, "CS102", "Dr. Smith", "Computer Science", "Tuesday", "1:00 PM", "2:00 PM", "Lab A"),
	}
	require.NoError(t, sched.Load(context.Background(), sessions))

	return New(sched, nil), sched
}

func mustSession(t *testing.T, code, instructor, dept, day, start, end, room string) *timetable.Session {
	t.Helper()
	s, err := timetable.New(code, code+" course", instructor, dept, day, start, end, room, 30, 20)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth_SetsRequestID(t *testing.T) {
	s, _ := newTestServer(t)

	resp := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err := uuid.Parse(resp.Header.Get(fiber.HeaderXRequestID))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	id := uuid.NewString()
	req.Header.Set(fiber.HeaderXRequestID, id)
	resp, err = s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestListSessions(t *testing.T) {
	s, _ := newTestServer(t)

	page := decode[timetable.Page](t, do(t, s, http.MethodGet, "/api/v1/sessions", ""))
	require.Len(t, page.Sessions, 3)
	assert.Equal(t, "CS101", page.Sessions[0].CourseCode)
	assert.Equal(t, 3, page.TotalItems)

	page = decode[timetable.Page](t, do(t, s, http.MethodGet, "/api/v1/sessions?department=Mathematics", ""))
	require.Len(t, page.Sessions, 1)
	assert.Equal(t, "MATH201", page.Sessions[0].CourseCode)

	page = decode[timetable.Page](t, do(t, s, http.MethodGet, "/api/v1/sessions?day=tue", ""))
	require.Len(t, page.Sessions, 1)
	assert.Equal(t, timetable.Tuesday, page.Sessions[0].Day)

	page = decode[timetable.Page](t, do(t, s, http.MethodGet, "/api/v1/sessions?page=2&page_size=2", ""))
	assert.Len(t, page.Sessions, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestListSessions_BadQuery(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{
		"/api/v1/sessions?day=sunday",
		"/api/v1/sessions?sort=colour",
		"/api/v1/sessions?status=pending",
	} {
		resp := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestGetSession(t *testing.T) {
	s, _ := newTestServer(t)

	sess := decode[timetable.Session](t, do(t, s, http.MethodGet, "/api/v1/sessions/2", ""))
	assert.Equal(t, "MATH201", sess.CourseCode)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/sessions/99", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/sessions/abc", "").StatusCode)
}

func TestCreateSession_RecomputesConflicts(t *testing.T) {
	s, sched := newTestServer(t)
	body := `{"course_code":"PHYS110","instructor":"Dr. Smith","day":"Tuesday",
		"start_time":"1:30 PM","end_time":"2:30 PM","room":"Lab B","capacity":40}`

	resp := do(t, s, http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[SessionResponse](t, resp)
	assert.NotZero(t, out.Session.ID)
	assert.Equal(t, timetable.StatusActive, out.Session.Status)
	assert.Equal(t, 1, out.Conflicts)
	assert.Empty(t, out.Warning)

	counts := timetable.CountByType(sched.Conflicts())
	assert.Equal(t, 1, counts[timetable.RoomConflict])
	assert.Equal(t, 1, counts[timetable.InstructorConflict])
}

func TestCreateSession_UnalignedWarning(t *testing.T) {
	s, _ := newTestServer(t)
	body := `{"course_code":"BIO100","day":"Friday","start_time":"9:15 AM","end_time":"10:00 AM","room":"Lab C"}`

	resp := do(t, s, http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[SessionResponse](t, resp)
	assert.Equal(t, "start time is not on a slot boundary", out.Warning)
}

func TestCreateSession_Invalid(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"course_code":`, http.StatusBadRequest},
		{"missing code", `{"day":"Monday","start_time":"9:00 AM","end_time":"10:00 AM"}`, http.StatusBadRequest},
		{"negative capacity", `{"course_code":"X","day":"Monday","start_time":"9:00 AM","end_time":"10:00 AM","capacity":-1}`, http.StatusBadRequest},
		{"bad day", `{"course_code":"X","day":"Saturday","start_time":"9:00 AM","end_time":"10:00 AM"}`, http.StatusUnprocessableEntity},
		{"bad time", `{"course_code":"X","day":"Monday","start_time":"9am","end_time":"10:00 AM"}`, http.StatusUnprocessableEntity},
		{"end before start", `{"course_code":"X","day":"Monday","start_time":"11:00 AM","end_time":"10:00 AM"}`, http.StatusUnprocessableEntity},
		{"bad status", `{"course_code":"X","day":"Monday","start_time":"9:00 AM","end_time":"10:00 AM","status":"Paused"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, s, http.MethodPost, "/api/v1/sessions", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestUpdateSession_ResolvesConflict(t *testing.T) {
	s, sched := newTestServer(t)
	require.Len(t, sched.Conflicts(), 1)

	body := `{"course_code":"MATH201","instructor":"Dr. Jones","department":"Mathematics","day":"Monday",
		"start_time":"11:00 AM","end_time":"12:00 PM","room":"Room 101","capacity":30,"enrolled":20}`
	resp := do(t, s, http.MethodPut, "/api/v1/sessions/2", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[SessionResponse](t, resp)
	assert.Equal(t, "11:00 AM", out.Session.StartTime)
	assert.Zero(t, out.Conflicts)
	assert.Empty(t, sched.Conflicts())

	resp = do(t, s, http.MethodPut, "/api/v1/sessions/42", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	s, sched := newTestServer(t)

	resp := do(t, s, http.MethodDelete, "/api/v1/sessions/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, sched.Conflicts())
	assert.Len(t, sched.All(), 2)

	resp = do(t, s, http.MethodDelete, "/api/v1/sessions/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListConflicts(t *testing.T) {
	s, _ := newTestServer(t)

	out := decode[ConflictsResponse](t, do(t, s, http.MethodGet, "/api/v1/conflicts", ""))
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, timetable.RoomConflict, out.Conflicts[0].Type)
	assert.Equal(t, timetable.Monday, out.Conflicts[0].Day)
	assert.Equal(t, 1, out.Total)
	assert.Zero(t, out.More)

	out = decode[ConflictsResponse](t, do(t, s, http.MethodGet, "/api/v1/conflicts?limit=0", ""))
	assert.Empty(t, out.Conflicts)
	assert.Equal(t, 1, out.More)
}

func TestExportConflicts(t *testing.T) {
	s, _ := newTestServer(t)

	resp := do(t, s, http.MethodGet, "/api/v1/conflicts.csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Room Conflict")
	assert.Contains(t, string(body), "MATH201")
}

func TestGrid(t *testing.T) {
	s, _ := newTestServer(t)

	out := decode[GridResponse](t, do(t, s, http.MethodGet, "/api/v1/grid", ""))
	assert.Equal(t, timetable.LookupExact, out.Mode)
	assert.Len(t, out.Slots, 23)
	assert.Equal(t, "8:00 AM", out.Slots[0])
	assert.Equal(t, "7:00 PM", out.Slots[22])
	assert.Len(t, out.Cells, 3)
	assert.Empty(t, out.Unaligned)

	out = decode[GridResponse](t, do(t, s, http.MethodGet, "/api/v1/grid?day=Tuesday", ""))
	require.Len(t, out.Cells, 1)
	assert.Equal(t, "1:00 PM", out.Cells[0].Slot)
	assert.Equal(t, "CS102", out.Cells[0].Course)
}

func TestLookup(t *testing.T) {
	s, _ := newTestServer(t)

	sess := decode[timetable.Session](t, do(t, s, http.MethodGet, "/api/v1/grid/monday?time=9:00+AM", ""))
	assert.Equal(t, "CS101", sess.CourseCode)

	// Exact mode: a session running through 9:30 AM is not shown there.
	resp := do(t, s, http.MethodGet, "/api/v1/grid/monday?time=9:30+AM", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, s, http.MethodGet, "/api/v1/grid/monday", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, s, http.MethodGet, "/api/v1/grid/sunday?time=9:00+AM", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFreeSlots(t *testing.T) {
	s, _ := newTestServer(t)

	var out struct {
		SessionID int64    `json:"session_id"`
		Slots     []string `json:"slots"`
	}
	resp := do(t, s, http.MethodGet, "/api/v1/sessions/2/free", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, int64(2), out.SessionID)
	assert.Contains(t, out.Slots, "8:00 AM")
	assert.NotContains(t, out.Slots, "9:00 AM")
	assert.Contains(t, out.Slots, "10:30 AM")
}

func TestWorkload(t *testing.T) {
	s, _ := newTestServer(t)

	out := decode[WorkloadResponse](t, do(t, s, http.MethodGet, "/api/v1/workload", ""))
	require.NotEmpty(t, out.Instructors)
	assert.Equal(t, "Dr. Smith", out.Instructors[0].Instructor)
	assert.Equal(t, 150, out.Instructors[0].Minutes)
	assert.Equal(t, 3, out.Totals.Sessions)
	assert.Equal(t, 1, out.Totals.RoomConflicts)
	assert.Len(t, out.Rooms, 2)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
