package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/timetable"
)

func (a *App) removeCmd() *cobra.Command {
	var cancel bool

	cmd := &cobra.Command{
		Use:   "remove [session-id]",
		Short: "Remove or cancel a session",
		Long: `Remove a session by its ID, or mark it cancelled with --cancel.

Cancelled sessions stay in the timetable and still take part in conflict
detection.`,
		Example: `  aula remove 42
  aula remove 42 --cancel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session ID: %w", err)
			}

			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()

			if !cancel {
				if err := sched.Remove(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed session #%d\n", id)
				return nil
			}

			s, err := sched.Get(ctx, id)
			if err != nil {
				return err
			}
			s.Status = timetable.StatusCancelled
			if err := sched.Update(ctx, s); err != nil {
				return fmt.Errorf("cancelling session: %w", err)
			}
			fmt.Fprintf(out, "Cancelled session #%d (%s)\n", id, s.CourseCode)
			printInvolved(out, sched.Conflicts(), id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cancel, "cancel", false, "Mark the session cancelled instead of removing it")
	return cmd
}

// printInvolved lists the conflicts a session takes part in.
func printInvolved(out io.Writer, conflicts []timetable.Conflict, id int64) {
	for _, c := range conflicts {
		if c.Involves(id) {
			PrintConflict(out, c)
		}
	}
}
