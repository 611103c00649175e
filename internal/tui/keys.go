package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/aula/internal/timetable"
	"github.com/javiermolinar/aula/internal/tui/commands"
)

var (
	defaultClipboardWrite = clipboard.WriteAll
	clipboardWrite        = defaultClipboardWrite
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.mode == ModeModal {
		return m.handleModalKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "h", "left":
		if m.view == ViewGrid && m.cursor.Day > 0 {
			m.cursor.Day--
		}
	case "l", "right":
		if m.view == ViewGrid && m.cursor.Day < len(m.days)-1 {
			m.cursor.Day++
		}
	case "k", "up":
		m = m.moveVertical(-1)
	case "j", "down":
		m = m.moveVertical(1)
	case "g", "home":
		m.cursor.Slot, m.row = 0, 0
	case "G", "end":
		m.cursor.Slot = len(m.slots) - 1
		m.row = max(len(m.visible)-1, 0)

	case "tab", "v":
		if m.view == ViewGrid {
			m.view = ViewList
			m = m.syncRowToCursor()
		} else {
			m.view = ViewGrid
			m = m.syncCursorToRow()
		}

	case "d":
		m.deptIndex++
		if m.deptIndex >= len(m.departments) {
			m.deptIndex = -1
		}
		m = m.rebuild()
		label := m.department()
		if label == "" {
			label = "all departments"
		}
		m = m.clampScroll()
		return m.setStatus("Showing " + label)

	case "m":
		if m.lookupMode == timetable.LookupExact {
			m.lookupMode = timetable.LookupCovering
		} else {
			m.lookupMode = timetable.LookupExact
		}
		m = m.rebuild()
		return m.setStatus(fmt.Sprintf("Grid lookup: %s", m.lookupMode))

	case "t":
		m.tintDepartments = !m.tintDepartments
		if m.tintDepartments {
			return m.setStatus("Colouring sessions by department")
		}
		return m.setStatus("Colouring sessions by status")

	case "n", "a":
		return m.openForm(nil), nil

	case "e", "enter":
		if s := m.selected(); s != nil {
			return m.openForm(s), nil
		}
		return m.setStatus("No session selected")

	case "x", "delete", "backspace":
		s := m.selected()
		if s == nil {
			return m.setStatus("No session selected")
		}
		m.deleteTarget = s
		return m.openModal(ModalConfirmDelete), nil

	case "c":
		return m.openModal(ModalConflicts), nil

	case "y":
		return m.copyConflicts()

	case "A":
		if m.advising {
			return m, nil
		}
		return m, commands.Advise(m.config, m.sched)

	case "r":
		return m, commands.Load(m.sched)
	}

	return m.clampScroll(), nil
}

// handleModalKeys routes keys to the open modal.
func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modalType {
	case ModalForm:
		return m.handleFormKeys(msg)
	case ModalConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			target := m.deleteTarget
			m = m.closeModal()
			if target == nil {
				return m, nil
			}
			return m, commands.Delete(m.sched, target.ID)
		case "n", "esc", "q":
			return m.closeModal(), nil
		}
	case ModalConflicts, ModalAdvice:
		switch msg.String() {
		case "esc", "q", "enter", "c":
			return m.closeModal(), nil
		case "j", "down":
			m.modalScroll++
		case "k", "up":
			m.modalScroll = max(m.modalScroll-1, 0)
		case "y":
			return m.copyConflicts()
		}
	}
	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeModal(), nil
	case "tab", "down":
		m.form = m.form.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.form = m.form.moveFocus(-1)
		return m, nil
	case "enter":
		s, err := m.form.session()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		return m, commands.Save(m.sched, s)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) openForm(s *timetable.Session) Model {
	if s != nil {
		m.form = newSessionForm(m.styles, s, formValues(s))
	} else {
		day := timetable.Monday
		if m.cursor.Day < len(m.days) {
			day = m.days[m.cursor.Day]
		}
		slot := m.slots[min(m.cursor.Slot, len(m.slots)-1)]
		m.form = newSessionForm(m.styles, nil, blankValues(day, slot, m.department()))
	}
	return m.openModal(ModalForm)
}

func (m Model) moveVertical(delta int) Model {
	if m.view == ViewList {
		m.row = min(max(m.row+delta, 0), max(len(m.visible)-1, 0))
		return m
	}
	m.cursor.Slot = min(max(m.cursor.Slot+delta, 0), len(m.slots)-1)
	return m
}

// syncRowToCursor selects the session under the grid cursor in the list.
func (m Model) syncRowToCursor() Model {
	s := m.grid.At(m.days[m.cursor.Day], m.cursor.Slot)
	for i, v := range m.visible {
		if v == s {
			m.row = i
			break
		}
	}
	return m.clampScroll()
}

// syncCursorToRow moves the grid cursor to the start cell of the selected session.
func (m Model) syncCursorToRow() Model {
	if m.row >= len(m.visible) {
		return m.clampScroll()
	}
	s := m.visible[m.row]
	for d, day := range m.days {
		if day != s.Day {
			continue
		}
		for i := range m.slots {
			if m.grid.At(day, i) == s && m.grid.StartsAt(day, i) {
				m.cursor = Position{Day: d, Slot: i}
				return m.clampScroll()
			}
		}
	}
	return m.clampScroll()
}

func (m Model) copyConflicts() (Model, tea.Cmd) {
	conflicts := m.visibleConflicts()
	if len(conflicts) == 0 {
		return m.setStatus("No conflicts to copy")
	}
	if err := clipboardWrite(conflictsText(conflicts)); err != nil {
		return m.setStatus(fmt.Sprintf("Copy failed: %v", err))
	}
	return m.setStatus(fmt.Sprintf("Copied %d conflicts", len(conflicts)))
}

// conflictsText renders conflicts one per line for the clipboard.
func conflictsText(conflicts []timetable.Conflict) string {
	var sb strings.Builder
	for _, c := range conflicts {
		fmt.Fprintf(&sb, "#%d %s: %s\n", c.ID, c.Type, c.Description)
	}
	return sb.String()
}
