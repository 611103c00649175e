package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/timetable"
)

func (a *App) addCmd() *cobra.Command {
	var (
		name       string
		instructor string
		department string
		day        string
		start      string
		end        string
		room       string
		capacity   int
		enrolled   int
	)

	cmd := &cobra.Command{
		Use:   "add [course-code]",
		Short: "Add a session",
		Long: `Add a session to the timetable and report any conflict it creates.

Times use the "H:MM AM" form. Sessions starting between slots are stored but
only appear in the grid in covering mode.`,
		Example: `  aula add CS101 --name="Intro to Programming" --instructor="Dr. Smith" \
    --day=Monday --start="9:00 AM" --end="10:30 AM" --room="Room 101"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := timetable.New(args[0], name, instructor, department, day, start, end, room, capacity, enrolled)
			if err != nil {
				return err
			}

			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}
			if err := sched.Add(commandContext(cmd), s); err != nil {
				return fmt.Errorf("adding session: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created session #%d: %s %s %s %s\n",
				s.ID, s.CourseCode, s.Day, s.TimeRange(), s.Room)
			if warning := sched.CheckWindow(s); warning != "" {
				fmt.Fprintf(out, "%s\n", formatWarning("Warning: "+warning))
			}
			printInvolved(out, sched.Conflicts(), s.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Course name")
	cmd.Flags().StringVar(&instructor, "instructor", "", "Instructor name")
	cmd.Flags().StringVar(&department, "department", "", "Department")
	cmd.Flags().StringVar(&day, "day", "", "Day of the week (required)")
	cmd.Flags().StringVar(&start, "start", "", `Start time, e.g. "9:00 AM" (required)`)
	cmd.Flags().StringVar(&end, "end", "", `End time, e.g. "10:30 AM" (required)`)
	cmd.Flags().StringVar(&room, "room", "", "Room")
	cmd.Flags().IntVar(&capacity, "capacity", 30, "Seats")
	cmd.Flags().IntVar(&enrolled, "enrolled", 0, "Enrolled students")

	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
