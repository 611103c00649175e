package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/aula/internal/tui/theme"
)

const (
	defaultColWidth = 14
	minColWidth     = 8
	maxColWidth     = 22
	timeColWidth    = 9
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle     lipgloss.Style
	DayHeaderStyle lipgloss.Style
	TimeStyle      lipgloss.Style

	// Grid cells
	CellStyle          lipgloss.Style
	SessionStyle       lipgloss.Style
	SessionAltStyle    lipgloss.Style // alternate shade for neighbouring sessions
	CancelledStyle     lipgloss.Style
	ConflictStyle      lipgloss.Style
	ContinuationStyle  lipgloss.Style // covering mode, cells after the first
	EmptyCellStyle     lipgloss.Style
	CursorStyle        lipgloss.Style
	ContestedMarkStyle lipgloss.Style

	// List rows
	RowStyle         lipgloss.Style
	RowSelectedStyle lipgloss.Style
	RowConflictStyle lipgloss.Style

	// Conflict panel
	PanelStyle      lipgloss.Style
	PanelTitleStyle lipgloss.Style
	PanelItemStyle  lipgloss.Style
	PanelMoreStyle  lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style

	// Modal
	ModalStyle            lipgloss.Style
	ModalTitleStyle       lipgloss.Style
	ModalLabelStyle       lipgloss.Style
	ModalLabelActiveStyle lipgloss.Style
	ModalInputTextStyle   lipgloss.Style
	ModalPlaceholderStyle lipgloss.Style
	ModalHintStyle        lipgloss.Style
	ModalErrorStyle       lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	s.TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	s.DayHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Fg).Align(lipgloss.Center)
	s.TimeStyle = lipgloss.NewStyle().Foreground(p.Accent).Width(timeColWidth)

	s.CellStyle = lipgloss.NewStyle().Align(lipgloss.Left)
	s.SessionStyle = s.CellStyle.Background(p.SessionBg).Foreground(p.TextOnSession).Bold(true)
	s.SessionAltStyle = s.CellStyle.Background(p.SessionBgAlt).Foreground(p.TextOnSession).Bold(true)
	s.CancelledStyle = s.CellStyle.Background(p.CancelledBg).Foreground(p.FgMuted).Strikethrough(true)
	s.ConflictStyle = s.CellStyle.Background(p.ConflictBg).Foreground(p.TextOnConflict).Bold(true)
	s.ContinuationStyle = s.CellStyle.Background(p.SessionBg).Foreground(p.FgMuted)
	s.EmptyCellStyle = s.CellStyle.Foreground(p.FgMuted)
	s.CursorStyle = s.CellStyle.Background(p.Warning).Foreground(p.TextOnWarning).Bold(true)
	s.ContestedMarkStyle = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)

	s.RowStyle = lipgloss.NewStyle().Foreground(p.Fg)
	s.RowSelectedStyle = lipgloss.NewStyle().Background(p.BgSelection).Foreground(p.Fg).Bold(true)
	s.RowConflictStyle = lipgloss.NewStyle().Foreground(p.Conflict)

	s.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(p.FgMuted)
	s.PanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Conflict)
	s.PanelItemStyle = lipgloss.NewStyle().Foreground(p.Fg)
	s.PanelMoreStyle = lipgloss.NewStyle().Foreground(p.FgMuted).Italic(true)

	s.StatusStyle = lipgloss.NewStyle().Foreground(p.Accent)
	s.ErrorStyle = lipgloss.NewStyle().Foreground(p.Conflict).Bold(true)
	s.HelpStyle = lipgloss.NewStyle().Foreground(p.FgMuted)

	s.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.ModalBorder).
		Background(p.ModalBg).
		Foreground(p.ModalText).
		Padding(1, 2)
	s.ModalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent).MarginBottom(1)
	s.ModalLabelStyle = lipgloss.NewStyle().Foreground(p.ModalMuted).Width(12)
	s.ModalLabelActiveStyle = s.ModalLabelStyle.Foreground(p.Accent).Bold(true)
	s.ModalInputTextStyle = lipgloss.NewStyle().Foreground(p.ModalText)
	s.ModalPlaceholderStyle = lipgloss.NewStyle().Foreground(p.ModalMuted)
	s.ModalHintStyle = lipgloss.NewStyle().Foreground(p.ModalMuted).MarginTop(1)
	s.ModalErrorStyle = lipgloss.NewStyle().Foreground(p.Conflict)

	return s
}

// DepartmentStyle returns the cell style tinted for dept, or SessionStyle
// when the theme has no department tints.
func (s *Styles) DepartmentStyle(dept string) lipgloss.Style {
	tint, ok := s.palette.Department(dept)
	if !ok {
		return s.SessionStyle
	}
	return s.CellStyle.Background(tint.Bg).Foreground(tint.Fg).Bold(true)
}

// Palette returns the colors the styles were built from.
func (s *Styles) Palette() *theme.Palette {
	return s.palette
}
