package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/aula/internal/timetable"
)

// View renders the TUI.
func (m Model) View() string {
	parts := []string{m.renderHeader(), m.renderBody(), m.renderConflictPanel(), m.renderFooter()}
	base := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.mode != ModeModal {
		return base
	}
	return placeOverlay(base, m.renderModal(), m.width, m.height)
}

func (m Model) renderHeader() string {
	dept := m.department()
	if dept == "" {
		dept = "all departments"
	}
	info := fmt.Sprintf(" %d sessions · %d conflicts · %s · %s lookup",
		len(m.visible), len(m.visibleConflicts()), dept, m.lookupMode)
	return m.styles.TitleStyle.Render("aula") + m.styles.HelpStyle.Render(info)
}

func (m Model) renderBody() string {
	if m.view == ViewList {
		return m.renderList()
	}
	return m.renderGrid()
}

// bodyRows is how many grid or list rows fit between the header and the panel.
func (m Model) bodyRows() int {
	used := 1 + lipgloss.Height(m.renderConflictPanel()) + 1 // header, panel, footer
	if m.view == ViewGrid {
		used++ // day header
	}
	return max(m.height-used, 1)
}

// clampScroll keeps the cursor or selected row inside the visible window.
func (m Model) clampScroll() Model {
	rows := m.bodyRows()
	pos := m.cursor.Slot
	total := len(m.slots)
	if m.view == ViewList {
		pos = m.row
		total = len(m.visible)
	}
	if pos < m.scroll {
		m.scroll = pos
	}
	if pos >= m.scroll+rows {
		m.scroll = pos - rows + 1
	}
	m.scroll = max(min(m.scroll, total-rows), 0)
	return m
}

func (m Model) colWidth() int {
	if len(m.days) == 0 {
		return defaultColWidth
	}
	w := (m.width - timeColWidth) / len(m.days)
	return min(max(w, minColWidth), maxColWidth)
}

func (m Model) renderGrid() string {
	colW := m.colWidth()
	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", timeColWidth))
	for _, d := range m.days {
		sb.WriteString(m.styles.DayHeaderStyle.Width(colW).Render(d.Short()))
	}

	end := min(m.scroll+m.bodyRows(), len(m.slots))
	for i := m.scroll; i < end; i++ {
		sb.WriteString("\n")
		sb.WriteString(m.styles.TimeStyle.Render(m.slots[i].Label))
		for d, day := range m.days {
			sb.WriteString(m.renderCell(d, day, i, colW))
		}
	}
	return sb.String()
}

func (m Model) renderCell(d int, day timetable.Weekday, slot, width int) string {
	s := m.grid.At(day, slot)
	contested := m.grid.Contested(day, slot)

	var text string
	style := m.styles.EmptyCellStyle
	switch {
	case s == nil:
		text = "·"
	case !m.grid.StartsAt(day, slot):
		text = "│"
		style = m.styles.ContinuationStyle
	default:
		text = s.CourseCode
		style = m.sessionStyle(s, slot)
	}
	if s != nil && m.grid.StartsAt(day, slot) && m.conflicting[s.ID] && s.Status != timetable.StatusCancelled {
		style = m.styles.ConflictStyle
	}

	mark := ""
	if contested {
		mark = "!"
		width--
	}
	if m.cursor.Day == d && m.cursor.Slot == slot && m.view == ViewGrid {
		style = m.styles.CursorStyle
	}

	text = ansi.Truncate(" "+text, width, "…")
	cell := style.Width(width).Render(text)
	if mark != "" {
		cell += m.styles.ContestedMarkStyle.Render(mark)
	}
	return cell
}

func (m Model) sessionStyle(s *timetable.Session, slot int) lipgloss.Style {
	if s.IsCancelled() {
		return m.styles.CancelledStyle
	}
	if m.tintDepartments {
		return m.styles.DepartmentStyle(s.Department)
	}
	if slot%2 == 1 {
		return m.styles.SessionAltStyle
	}
	return m.styles.SessionStyle
}

func (m Model) renderList() string {
	if len(m.visible) == 0 {
		return m.styles.HelpStyle.Render("  No sessions.")
	}

	var lines []string
	end := min(m.scroll+m.bodyRows(), len(m.visible))
	for i := m.scroll; i < end; i++ {
		s := m.visible[i]
		marker := " "
		if m.conflicting[s.ID] {
			marker = "!"
		}
		line := fmt.Sprintf("%s #%-4d %-3s %-19s %-9s %-14s %-16s %3d/%-3d %s",
			marker, s.ID, s.Day.Short(), s.TimeRange(), s.CourseCode,
			ansi.Truncate(s.Room, 14, "…"), ansi.Truncate(s.Instructor, 16, "…"),
			s.Enrolled, s.Capacity, s.Status)
		line = ansi.Truncate(line, m.width, "…")

		switch {
		case i == m.row:
			line = m.styles.RowSelectedStyle.Render(line)
		case m.conflicting[s.ID]:
			line = m.styles.RowConflictStyle.Render(line)
		default:
			line = m.styles.RowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderConflictPanel lists the first conflicts and a "+N more" line.
func (m Model) renderConflictPanel() string {
	conflicts := m.visibleConflicts()
	if len(conflicts) == 0 {
		return m.styles.PanelStyle.Render(m.styles.HelpStyle.Render("No conflicts"))
	}

	shown, more := timetable.Summarize(conflicts, panelLimit)
	lines := []string{m.styles.PanelTitleStyle.Render(fmt.Sprintf("Conflicts (%d)", len(conflicts)))}
	for _, c := range shown {
		lines = append(lines, m.styles.PanelItemStyle.Render(ansi.Truncate(conflictLine(c), max(m.width, 20), "…")))
	}
	if more > 0 {
		lines = append(lines, m.styles.PanelMoreStyle.Render(fmt.Sprintf("+%d more", more)))
	}
	return m.styles.PanelStyle.Render(strings.Join(lines, "\n"))
}

func conflictLine(c timetable.Conflict) string {
	a, b := c.Sessions[0], c.Sessions[1]
	return fmt.Sprintf("#%d %s %s: %s %s / %s %s",
		c.ID, c.Day.Short(), c.Type, a.CourseCode, a.TimeRange(), b.CourseCode, b.TimeRange())
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		if strings.HasPrefix(m.statusMsg, "Error") || strings.HasSuffix(m.statusMsg, "failed") {
			return m.styles.ErrorStyle.Render(m.statusMsg)
		}
		return m.styles.StatusStyle.Render(m.statusMsg)
	}
	help := "hjkl move · tab view · d dept · m lookup · t tint · n new · e edit · x delete · c conflicts · y copy · A advice · q quit"
	return m.styles.HelpStyle.Render(ansi.Truncate(help, max(m.width, 20), "…"))
}

func (m Model) renderModal() string {
	switch m.modalType {
	case ModalForm:
		return m.form.view(m.styles)
	case ModalConfirmDelete:
		return m.renderConfirmDelete()
	case ModalConflicts:
		return m.renderTextModal(fmt.Sprintf("Conflicts (%d)", len(m.visibleConflicts())), conflictsText(m.visibleConflicts()))
	case ModalAdvice:
		text := ""
		if m.advice != nil {
			text = m.advice.String()
		}
		return m.renderTextModal("Advice", text)
	}
	return ""
}

func (m Model) renderConfirmDelete() string {
	s := m.deleteTarget
	if s == nil {
		return ""
	}
	body := fmt.Sprintf("Delete %s on %s %s in %s?", s.CourseCode, s.Day, s.TimeRange(), s.Room)
	return m.styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.ModalTitleStyle.Render("Delete session"),
		body,
		m.styles.ModalHintStyle.Render("y confirm · n cancel"),
	))
}

// renderTextModal shows scrollable wrapped text.
func (m Model) renderTextModal(title, text string) string {
	width := min(max(m.width-10, 30), 90)
	lines := strings.Split(strings.TrimRight(ansi.Wordwrap(text, width, " "), "\n"), "\n")

	rows := max(m.height-10, 3)
	start := min(m.modalScroll, max(len(lines)-rows, 0))
	end := min(start+rows, len(lines))

	body := strings.Join(lines[start:end], "\n")
	hint := "j/k scroll · y copy · esc close"
	if end < len(lines) {
		hint = fmt.Sprintf("%d more lines · %s", len(lines)-end, hint)
	}
	return m.styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.ModalTitleStyle.Render(title),
		body,
		m.styles.ModalHintStyle.Render(hint),
	))
}
