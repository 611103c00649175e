package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/aula/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.clampScroll(), nil

	case commands.SnapshotMsg:
		return m.applySnapshot(msg), nil

	case commands.SavedMsg:
		m = m.applySnapshot(msg.Snapshot).closeModal()
		verb := "Updated"
		if msg.Created {
			verb = "Added"
		}
		status := fmt.Sprintf("%s %s #%d", verb, msg.Session.CourseCode, msg.Session.ID)
		if msg.Warning != "" {
			status += " (not on grid: " + msg.Warning + ")"
		}
		return m.setStatus(status)

	case commands.DeletedMsg:
		m = m.applySnapshot(msg.Snapshot).closeModal()
		return m.setStatus(fmt.Sprintf("Deleted session #%d", msg.ID))

	case commands.ErrMsg:
		m.err = msg.Err
		if m.mode == ModeModal && m.modalType == ModalForm {
			m.form.err = msg.Err.Error()
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Error: %v", msg.Err)
		m.statusTime = m.now().Add(5 * time.Second)
		return m, nil

	case commands.StatusMsgCmd:
		return m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil

	case commands.AdviceStartedMsg:
		m.advising = true
		m.statusMsg = "Asking for advice..."
		return m, nil

	case commands.AdviceMsg:
		m.advising = false
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Advice failed: %v", msg.Err)
			m.statusTime = m.now().Add(5 * time.Second)
			return m, nil
		}
		m.statusMsg = ""
		m.advice = msg.Advice
		return m.openModal(ModalAdvice), nil
	}

	if m.mode == ModeModal && m.modalType == ModalForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}
