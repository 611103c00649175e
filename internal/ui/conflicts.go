package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/timetable"
)

func (a *App) conflictsCmd() *cobra.Command {
	var (
		limit  int
		day    string
		kind   string
		failOn bool
	)

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List room and instructor conflicts",
		Long: `List every pair of sessions that share a room or an instructor at
overlapping times on the same day.

Times touching at a boundary (10:00 AM end, 10:00 AM start) do not conflict.
Cancelled sessions still take part in detection.`,
		Example: `  aula conflicts
  aula conflicts --limit=3
  aula conflicts --type=room --day=wed --fail`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}

			conflicts, err := filterConflicts(sched.Conflicts(), day, kind)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  %s\n", formatHeader(fmt.Sprintf("CONFLICTS (%d)", len(conflicts))))
			PrintConflicts(out, conflicts, limit)
			fmt.Fprintln(out)

			if failOn && len(conflicts) > 0 {
				return ErrConflictsFound
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", -1, `Show at most this many, then "+N more"`)
	cmd.Flags().StringVar(&day, "day", "", "Only conflicts on this day")
	cmd.Flags().StringVar(&kind, "type", "", "Only room or instructor conflicts")
	cmd.Flags().BoolVar(&failOn, "fail", false, "Exit with status 2 when conflicts exist")
	return cmd
}

func filterConflicts(conflicts []timetable.Conflict, day, kind string) ([]timetable.Conflict, error) {
	var want timetable.ConflictType
	switch kind {
	case "":
	case "room":
		want = timetable.RoomConflict
	case "instructor":
		want = timetable.InstructorConflict
	default:
		return nil, fmt.Errorf("unknown conflict type %q (want room or instructor)", kind)
	}

	var onDay *timetable.Weekday
	if day != "" {
		d, err := timetable.ParseWeekday(day)
		if err != nil {
			return nil, err
		}
		onDay = &d
	}

	if want == "" && onDay == nil {
		return conflicts, nil
	}
	var out []timetable.Conflict
	for _, c := range conflicts {
		if want != "" && c.Type != want {
			continue
		}
		if onDay != nil && c.Day != *onDay {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
