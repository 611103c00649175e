package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/timetable"
)

func (a *App) workloadCmd() *cobra.Command {
	var rooms bool

	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Show instructor teaching load and room usage",
		Long: `Display weekly teaching hours per instructor and, with --rooms, how much
of the grid window each room is booked. Cancelled sessions are not counted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printWorkload(out, sched.Workload())
			if rooms {
				fmt.Fprintln(out)
				printRooms(out, sched.Rooms())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rooms, "rooms", false, "Also show room utilisation")
	return cmd
}

func printWorkload(out io.Writer, loads []timetable.InstructorLoad) {
	fmt.Fprintf(out, "  %s\n", formatHeader("INSTRUCTORS"))
	fmt.Fprintln(out, strings.Repeat("─", 74))
	if len(loads) == 0 {
		fmt.Fprintln(out, "  No active sessions.")
		return
	}
	for _, l := range loads {
		days := make([]string, 0, len(l.Days))
		for _, d := range l.Days {
			days = append(days, d.Short())
		}
		line := fmt.Sprintf("  %-24s %6s  %2d sessions  %-19s",
			l.Instructor, FormatDuration(l.Minutes), l.Sessions, strings.Join(days, " "))
		if l.Conflicts > 0 {
			line += "  " + formatInstructor(fmt.Sprintf("%d conflicts", l.Conflicts))
		}
		fmt.Fprintln(out, line)
	}
}

func printRooms(out io.Writer, usage []timetable.RoomUsage) {
	fmt.Fprintf(out, "  %s\n", formatHeader("ROOMS"))
	fmt.Fprintln(out, strings.Repeat("─", 74))
	if len(usage) == 0 {
		fmt.Fprintln(out, "  No booked rooms.")
		return
	}
	for _, u := range usage {
		fmt.Fprintf(out, "  %-16s %s  %2d sessions  %s\n",
			u.Room, UsageBar(u.Percent, 20), u.Sessions, FormatDuration(u.BookedMinutes))
	}
}
