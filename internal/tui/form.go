package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/aula/internal/timetable"
)

type formField int

const (
	fieldCode formField = iota
	fieldName
	fieldInstructor
	fieldDepartment
	fieldDay
	fieldStart
	fieldEnd
	fieldRoom
	fieldCapacity
	fieldEnrolled
	fieldStatus
	fieldCount
)

var formLabels = [fieldCount]string{
	"Code", "Name", "Instructor", "Department", "Day", "Start", "End",
	"Room", "Capacity", "Enrolled", "Status",
}

var formPlaceholders = [fieldCount]string{
	"CS101", "Intro to Programming", "Dr. Smith", "Computer Science", "Monday",
	"9:00 AM", "10:30 AM", "Room 101", "30", "25", "active",
}

// sessionForm edits one session. A nil original means a new session.
type sessionForm struct {
	original *timetable.Session
	inputs   []textinput.Model
	focus    formField
	err      string
}

func newSessionForm(styles *Styles, original *timetable.Session, values [fieldCount]string) sessionForm {
	f := sessionForm{original: original, inputs: make([]textinput.Model, fieldCount)}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = formPlaceholders[i]
		in.CharLimit = 64
		in.Width = 28
		in.Prompt = ""
		in.TextStyle = styles.ModalInputTextStyle
		in.PlaceholderStyle = styles.ModalPlaceholderStyle
		in.SetValue(values[i])
		f.inputs[i] = in
	}
	f.inputs[fieldCode].Focus()
	return f
}

// formValues returns the field values of s.
func formValues(s *timetable.Session) [fieldCount]string {
	return [fieldCount]string{
		s.CourseCode, s.CourseName, s.Instructor, s.Department, s.Day.String(),
		s.StartTime, s.EndTime, s.Room,
		strconv.Itoa(s.Capacity), strconv.Itoa(s.Enrolled), string(s.Status),
	}
}

// blankValues returns defaults for a new session starting at slot on day.
func blankValues(day timetable.Weekday, slot timetable.Slot, department string) [fieldCount]string {
	var v [fieldCount]string
	v[fieldDepartment] = department
	v[fieldDay] = day.String()
	v[fieldStart] = slot.Label
	v[fieldEnd] = timetable.FormatClock(slot.Minutes + 60)
	v[fieldCapacity] = "30"
	v[fieldEnrolled] = "0"
	v[fieldStatus] = string(timetable.StatusActive)
	return v
}

func (f sessionForm) title() string {
	if f.original == nil {
		return "New session"
	}
	return fmt.Sprintf("Edit session #%d", f.original.ID)
}

func (f sessionForm) value(field formField) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

func (f sessionForm) moveFocus(delta int) sessionForm {
	f.inputs[f.focus].Blur()
	f.focus = formField((int(f.focus) + delta + int(fieldCount)) % int(fieldCount))
	f.inputs[f.focus].Focus()
	return f
}

func (f sessionForm) update(msg tea.Msg) (sessionForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// session builds a validated session from the form.
func (f sessionForm) session() (*timetable.Session, error) {
	capacity, err := strconv.Atoi(f.value(fieldCapacity))
	if err != nil {
		return nil, fmt.Errorf("capacity must be a number")
	}
	enrolled, err := strconv.Atoi(f.value(fieldEnrolled))
	if err != nil {
		return nil, fmt.Errorf("enrolled must be a number")
	}
	status, err := timetable.ParseStatus(f.value(fieldStatus))
	if err != nil {
		return nil, err
	}

	s, err := timetable.New(
		f.value(fieldCode), f.value(fieldName), f.value(fieldInstructor), f.value(fieldDepartment),
		f.value(fieldDay), f.value(fieldStart), f.value(fieldEnd), f.value(fieldRoom),
		capacity, enrolled,
	)
	if err != nil {
		return nil, err
	}
	s.Status = status
	if f.original != nil {
		s.ID = f.original.ID
		s.RoomID = f.original.RoomID
		s.InstructorID = f.original.InstructorID
	}
	return s, nil
}

func (f sessionForm) view(styles *Styles) string {
	var rows []string
	rows = append(rows, styles.ModalTitleStyle.Render(f.title()))
	for i, in := range f.inputs {
		label := styles.ModalLabelStyle
		if formField(i) == f.focus {
			label = styles.ModalLabelActiveStyle
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(formLabels[i]), in.View()))
	}
	if f.err != "" {
		rows = append(rows, "", styles.ModalErrorStyle.Render(f.err))
	}
	rows = append(rows, styles.ModalHintStyle.Render("tab next · shift+tab prev · enter save · esc cancel"))
	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
