package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/timetable"
)

const gridColWidth = 10

func (a *App) gridCmd() *cobra.Command {
	var (
		mode string
		day  string
		at   string
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show the week grid",
		Long: `Display the timetable as a week grid of time slots.

In exact mode a session appears only in the slot whose label equals its start
time, so sessions starting off the grid are listed below it. In covering mode
a session fills every slot it runs through. Cells claimed by more than one
session are marked with "*".

With --at, prints the session shown at one day and time instead.`,
		Example: `  aula grid
  aula grid --mode=covering --day=tue
  aula grid --day=monday --at="9:00 AM"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}

			g := sched.Grid()
			if mode != "" {
				m, err := timetable.ParseLookupMode(mode)
				if err != nil {
					return err
				}
				if m != g.Mode() {
					g = timetable.NewGrid(sched.All(), sched.Slots(), m)
				}
			}

			days := a.config.Weekdays()
			if day != "" {
				d, err := timetable.ParseWeekday(day)
				if err != nil {
					return err
				}
				days = []timetable.Weekday{d}
			}

			out := cmd.OutOrStdout()
			if at != "" {
				if len(days) != 1 {
					return fmt.Errorf("--at needs --day")
				}
				s := g.Lookup(days[0], at)
				if s == nil {
					fmt.Fprintf(out, "Nothing at %s %s.\n", days[0], at)
					return nil
				}
				PrintSessionRow(out, s, PrintOpts{ShowEnrollment: true}, 28)
				return nil
			}

			printGrid(out, g, days)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Grid lookup mode: exact or covering (default from config)")
	cmd.Flags().StringVar(&day, "day", "", "Show a single day")
	cmd.Flags().StringVar(&at, "at", "", `Look up one slot label, e.g. "9:00 AM"`)
	return cmd
}

func printGrid(out io.Writer, g *timetable.Grid, days []timetable.Weekday) {
	var header strings.Builder
	fmt.Fprintf(&header, "  %-9s", "")
	for _, d := range days {
		fmt.Fprintf(&header, "│%-*s", gridColWidth, " "+d.Short())
	}
	fmt.Fprintln(out, formatHeader(header.String()))
	fmt.Fprintln(out, "  "+strings.Repeat("─", 9+len(days)*(gridColWidth+1)))

	for i, sl := range g.Slots() {
		var row strings.Builder
		fmt.Fprintf(&row, "  %8s ", sl.Label)
		for _, d := range days {
			row.WriteString("│")
			row.WriteString(gridCell(g, d, i))
		}
		fmt.Fprintln(out, row.String())
	}

	unaligned := g.Unaligned()
	if len(unaligned) == 0 {
		return
	}
	fmt.Fprintf(out, "\n  %s\n", formatWarning(fmt.Sprintf("Not on the grid (%d):", len(unaligned))))
	for _, s := range unaligned {
		fmt.Fprintf(out, "    %s %s %s  %s\n", formatCourse(s.CourseCode), s.Day.Short(), s.TimeRange(), s.Room)
	}
}

func gridCell(g *timetable.Grid, day timetable.Weekday, slot int) string {
	s := g.At(day, slot)
	if s == nil {
		return pad(formatMuted(" ·"), 2)
	}

	text := " │"
	if g.StartsAt(day, slot) {
		text = " " + s.CourseCode
	}
	if g.Contested(day, slot) {
		text += "*"
	}
	text = ansi.Truncate(text, gridColWidth, "…")
	width := ansi.StringWidth(text)

	switch {
	case g.Contested(day, slot):
		text = formatRoom(text)
	case s.IsCancelled():
		text = formatMuted(text)
	default:
		text = formatCourse(text)
	}
	return pad(text, width)
}

// pad right-pads styled text whose printable width is width.
func pad(text string, width int) string {
	if width >= gridColWidth {
		return text
	}
	return text + strings.Repeat(" ", gridColWidth-width)
}
