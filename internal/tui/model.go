// Package tui provides the terminal user interface for aula.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/aula/internal/advisor"
	"github.com/javiermolinar/aula/internal/config"
	"github.com/javiermolinar/aula/internal/scheduler"
	"github.com/javiermolinar/aula/internal/timetable"
	"github.com/javiermolinar/aula/internal/tui/commands"
	"github.com/javiermolinar/aula/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeModal
)

// ModalType identifies the type of modal.
type ModalType int

const (
	ModalNone ModalType = iota
	ModalForm
	ModalConfirmDelete
	ModalConflicts // every conflict, scrollable
	ModalAdvice
)

// ViewKind selects the main panel.
type ViewKind int

const (
	ViewGrid ViewKind = iota
	ViewList
)

// panelLimit is how many conflicts the panel lists before "+N more".
const panelLimit = 3

// Position is a cursor position in the week grid.
type Position struct {
	Day  int // index into the grid days
	Slot int // index into the grid slots
}

// Model is the main TUI model. Update never blocks: mutations run as commands against
// the scheduler and come back as snapshot messages.
type Model struct {
	sched  *scheduler.Scheduler
	config *config.Config

	theme  *theme.Theme
	styles *Styles

	// Snapshot of the timetable
	sessions    []*timetable.Session
	conflicts   []timetable.Conflict
	departments []string
	version     uint64

	// Derived from the snapshot and the filter
	visible     []*timetable.Session
	grid        *timetable.Grid
	conflicting map[int64]bool

	slots      []timetable.Slot
	days       []timetable.Weekday
	lookupMode timetable.LookupMode
	deptIndex  int // -1 shows every department

	tintDepartments bool

	view   ViewKind
	cursor Position
	row    int // list view selection
	scroll int

	mode         Mode
	modalType    ModalType
	form         sessionForm
	deleteTarget *timetable.Session
	advice       *advisor.Advice
	advising     bool
	modalScroll  int

	width  int
	height int

	statusMsg  string
	statusTime time.Time
	err        error

	now func() time.Time
}

// New creates a new TUI model.
func New(sched *scheduler.Scheduler, cfg *config.Config) Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load(theme.DefaultName)
	}

	m := Model{
		sched:      sched,
		config:     cfg,
		theme:      t,
		styles:     NewStyles(t),
		slots:      sched.Slots(),
		days:       cfg.Weekdays(),
		lookupMode: sched.Mode(),
		deptIndex:  -1,
		width:      100,
		height:     30,
		now:        time.Now,
	}
	if len(m.days) == 0 {
		m.days = timetable.Weekdays()
	}
	return m.applySnapshot(commands.Snapshot(sched))
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the TUI.
func Run(sched *scheduler.Scheduler, cfg *config.Config) error {
	p := tea.NewProgram(New(sched, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// applySnapshot replaces the timetable snapshot and rebuilds derived state.
func (m Model) applySnapshot(s commands.SnapshotMsg) Model {
	m.sessions = s.Sessions
	m.conflicts = s.Conflicts
	m.departments = s.Departments
	m.version = s.Version
	if m.deptIndex >= len(m.departments) {
		m.deptIndex = -1
	}
	return m.rebuild()
}

// rebuild derives the filtered list, grid and conflict markers.
func (m Model) rebuild() Model {
	dept := m.department()
	m.visible = m.visible[:0:0]
	for _, s := range m.sessions {
		if dept == "" || s.Department == dept {
			m.visible = append(m.visible, s)
		}
	}
	m.grid = timetable.NewGrid(m.visible, m.slots, m.lookupMode)
	m.conflicting = timetable.ConflictingSessionIDs(m.conflicts)
	m.row = min(m.row, max(len(m.visible)-1, 0))
	return m
}

// department returns the active filter, or "" for all.
func (m Model) department() string {
	if m.deptIndex < 0 || m.deptIndex >= len(m.departments) {
		return ""
	}
	return m.departments[m.deptIndex]
}

// selected returns the session under the cursor, or nil.
func (m Model) selected() *timetable.Session {
	switch m.view {
	case ViewList:
		if m.row >= 0 && m.row < len(m.visible) {
			return m.visible[m.row]
		}
		return nil
	default:
		if m.cursor.Day >= len(m.days) {
			return nil
		}
		return m.grid.At(m.days[m.cursor.Day], m.cursor.Slot)
	}
}

// visibleConflicts returns conflicts touching at least one visible session.
func (m Model) visibleConflicts() []timetable.Conflict {
	if m.department() == "" {
		return m.conflicts
	}
	shown := make(map[int64]bool, len(m.visible))
	for _, s := range m.visible {
		shown[s.ID] = true
	}
	var out []timetable.Conflict
	for _, c := range m.conflicts {
		if shown[c.Sessions[0].ID] || shown[c.Sessions[1].ID] {
			out = append(out, c)
		}
	}
	return out
}

func (m Model) setStatus(msg string) (Model, tea.Cmd) {
	m.statusMsg = msg
	m.statusTime = m.now().Add(3 * time.Second)
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

func (m Model) openModal(t ModalType) Model {
	m.mode = ModeModal
	m.modalType = t
	m.modalScroll = 0
	return m
}

func (m Model) closeModal() Model {
	m.mode = ModeNormal
	m.modalType = ModalNone
	m.deleteTarget = nil
	return m
}
