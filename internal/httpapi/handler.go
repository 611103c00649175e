package httpapi

import (
	"bytes"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/javiermolinar/aula/internal/csvio"
	"github.com/javiermolinar/aula/internal/timetable"
)

// SessionRequest is the body of create and update calls.
type SessionRequest struct {
	CourseCode   string `json:"course_code" validate:"required,max=32"`
	CourseName   string `json:"course_name" validate:"max=200"`
	Instructor   string `json:"instructor" validate:"max=100"`
	InstructorID int64  `json:"instructor_id" validate:"gte=0"`
	Department   string `json:"department" validate:"max=100"`
	Day          string `json:"day" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Room         string `json:"room" validate:"max=100"`
	RoomID       int64  `json:"room_id" validate:"gte=0"`
	Capacity     int    `json:"capacity" validate:"gte=0"`
	Enrolled     int    `json:"enrolled" validate:"gte=0"`
	Status       string `json:"status" validate:"omitempty,max=20"`
}

func (r SessionRequest) session(id int64) (*timetable.Session, error) {
	day, err := timetable.ParseWeekday(r.Day)
	if err != nil {
		return nil, err
	}
	status := timetable.StatusActive
	if r.Status != "" {
		if status, err = timetable.ParseStatus(r.Status); err != nil {
			return nil, err
		}
	}
	return &timetable.Session{
		ID:           id,
		CourseCode:   strings.TrimSpace(r.CourseCode),
		CourseName:   strings.TrimSpace(r.CourseName),
		Instructor:   strings.TrimSpace(r.Instructor),
		InstructorID: timetable.InstructorID(r.InstructorID),
		Department:   strings.TrimSpace(r.Department),
		Day:          day,
		StartTime:    strings.TrimSpace(r.StartTime),
		EndTime:      strings.TrimSpace(r.EndTime),
		Room:         strings.TrimSpace(r.Room),
		RoomID:       timetable.RoomID(r.RoomID),
		Capacity:     r.Capacity,
		Enrolled:     r.Enrolled,
		Status:       status,
	}, nil
}

// SessionResponse wraps a stored session with a placement warning, if any.
type SessionResponse struct {
	Session   *timetable.Session `json:"session"`
	Warning   string             `json:"warning,omitempty"`
	Conflicts int                `json:"conflicts"`
}

// ConflictsResponse is a possibly truncated conflict listing.
type ConflictsResponse struct {
	Conflicts []timetable.Conflict `json:"conflicts"`
	Total     int                  `json:"total"`
	More      int                  `json:"more"`
}

// Cell is one occupied grid cell.
type Cell struct {
	Day       timetable.Weekday `json:"day"`
	Slot      string            `json:"slot"`
	SessionID int64             `json:"session_id"`
	Course    string            `json:"course_code"`
	Start     bool              `json:"start"`
	Contested bool              `json:"contested"`
}

// GridResponse is the week grid flattened to its occupied cells.
type GridResponse struct {
	Mode      timetable.LookupMode `json:"mode"`
	Slots     []string             `json:"slots"`
	Cells     []Cell               `json:"cells"`
	Unaligned []*timetable.Session `json:"unaligned"`
}

// WorkloadResponse holds instructor and room totals.
type WorkloadResponse struct {
	Instructors []timetable.InstructorLoad `json:"instructors"`
	Rooms       []timetable.RoomUsage      `json:"rooms"`
	Totals      timetable.Totals           `json:"totals"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": s.sched.Version()})
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	page, err := s.sched.Page(c.UserContext(), q)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(page)
}

func parseQuery(c *fiber.Ctx) (timetable.Query, error) {
	q := timetable.Query{
		Department: c.Query("department"),
		Instructor: c.Query("instructor"),
		Room:       c.Query("room"),
		Search:     c.Query("q"),
		Desc:       c.QueryBool("desc", false),
		Page:       c.QueryInt("page", 0),
		PageSize:   c.QueryInt("page_size", 0),
	}
	sort, err := timetable.ParseSortField(c.Query("sort"))
	if err != nil {
		return timetable.Query{}, err
	}
	q.Sort = sort
	if day := c.Query("day"); day != "" {
		d, err := timetable.ParseWeekday(day)
		if err != nil {
			return timetable.Query{}, err
		}
		q.Day = &d
	}
	if status := c.Query("status"); status != "" {
		st, err := timetable.ParseStatus(status)
		if err != nil {
			return timetable.Query{}, err
		}
		q.Status = st
	}
	if q.Page < 0 || q.PageSize < 0 {
		return timetable.Query{}, errors.New("page and page_size cannot be negative")
	}
	return q, nil
}

func (s *Server) getSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	sess, err := s.sched.Get(c.UserContext(), int64(id))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(sess)
}

func (s *Server) createSession(c *fiber.Ctx) error {
	sess, ok, err := s.bind(c, 0)
	if !ok {
		return err
	}
	if err := s.sched.Add(c.UserContext(), sess); err != nil {
		return s.writeError(c, err)
	}
	s.log.InfoContext(c.UserContext(), "session created", "id", sess.ID, "course", sess.CourseCode)
	return c.Status(fiber.StatusCreated).JSON(s.response(sess))
}

func (s *Server) updateSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	sess, ok, err := s.bind(c, int64(id))
	if !ok {
		return err
	}
	if err := s.sched.Update(c.UserContext(), sess); err != nil {
		return s.writeError(c, err)
	}
	s.log.InfoContext(c.UserContext(), "session updated", "id", sess.ID, "course", sess.CourseCode)
	return c.JSON(s.response(sess))
}

// bind parses and validates the body. When ok is false the response has been written
// and err is what the handler should return.
func (s *Server) bind(c *fiber.Ctx, id int64) (sess *timetable.Session, ok bool, err error) {
	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid input",
			"details": validationDetails(err),
		})
	}
	sess, err = req.session(id)
	if err != nil {
		return nil, false, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return sess, true, nil
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fe.Field()+": failed "+fe.Tag())
	}
	return details
}

func (s *Server) response(sess *timetable.Session) SessionResponse {
	n := 0
	for _, c := range s.sched.Conflicts() {
		if c.Involves(sess.ID) {
			n++
		}
	}
	return SessionResponse{Session: sess, Warning: s.sched.CheckWindow(sess), Conflicts: n}
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	if err := s.sched.Remove(c.UserContext(), int64(id)); err != nil {
		return s.writeError(c, err)
	}
	s.log.InfoContext(c.UserContext(), "session removed", "id", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) freeSlots(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	sess, err := s.sched.Get(c.UserContext(), int64(id))
	if err != nil {
		return s.writeError(c, err)
	}
	day := sess.Day
	if raw := c.Query("day"); raw != "" {
		if day, err = timetable.ParseWeekday(raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	labels := []string{}
	for _, sl := range s.sched.FreeSlots(sess, day) {
		labels = append(labels, sl.Label)
	}
	return c.JSON(fiber.Map{"session_id": sess.ID, "day": day, "slots": labels})
}

func (s *Server) listConflicts(c *fiber.Ctx) error {
	all := s.sched.Conflicts()
	limit := c.QueryInt("limit", -1)
	shown, more := timetable.Summarize(all, limit)
	if shown == nil {
		shown = []timetable.Conflict{}
	}
	return c.JSON(ConflictsResponse{Conflicts: shown, Total: len(all), More: more})
}

func (s *Server) exportConflicts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := csvio.WriteConflicts(&buf, s.sched.Conflicts()); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="conflicts.csv"`)
	return c.Send(buf.Bytes())
}

func (s *Server) grid(c *fiber.Ctx) error {
	g := s.sched.Grid()
	days := timetable.Weekdays()
	if raw := c.Query("day"); raw != "" {
		d, err := timetable.ParseWeekday(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		days = []timetable.Weekday{d}
	}

	resp := GridResponse{Mode: g.Mode(), Cells: []Cell{}, Unaligned: g.Unaligned()}
	for _, sl := range g.Slots() {
		resp.Slots = append(resp.Slots, sl.Label)
	}
	for _, d := range days {
		for i, sl := range g.Slots() {
			sess := g.At(d, i)
			if sess == nil {
				continue
			}
			resp.Cells = append(resp.Cells, Cell{
				Day:       d,
				Slot:      sl.Label,
				SessionID: sess.ID,
				Course:    sess.CourseCode,
				Start:     g.StartsAt(d, i),
				Contested: g.Contested(d, i),
			})
		}
	}
	if resp.Unaligned == nil {
		resp.Unaligned = []*timetable.Session{}
	}
	return c.JSON(resp)
}

// lookup answers "what is shown at this day and time", e.g. /grid/monday?time=9:00+AM.
func (s *Server) lookup(c *fiber.Ctx) error {
	day, err := timetable.ParseWeekday(c.Params("day"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	label := strings.TrimSpace(c.Query("time"))
	if label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "time is required"})
	}
	sess := s.sched.Grid().Lookup(day, label)
	if sess == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no session at " + day.String() + " " + label})
	}
	return c.JSON(sess)
}

func (s *Server) workload(c *fiber.Ctx) error {
	return c.JSON(WorkloadResponse{
		Instructors: s.sched.Workload(),
		Rooms:       s.sched.Rooms(),
		Totals:      s.sched.Totals(),
	})
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, timetable.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case isValidationError(err):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		s.log.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		timetable.ErrEmptyCourseCode,
		timetable.ErrInvalidTimeFormat,
		timetable.ErrEndBeforeStart,
		timetable.ErrInvalidDay,
		timetable.ErrInvalidStatus,
		timetable.ErrInvalidCapacity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
