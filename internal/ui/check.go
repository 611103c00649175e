package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/csvio"
	"github.com/javiermolinar/aula/internal/timetable"
)

func (a *App) checkCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "check [csv_path]",
		Short: "Check a CSV timetable for conflicts",
		Long: `Validate a CSV timetable and report its conflicts without storing it.

Exits with status 2 when conflicts are found, so it can gate a pipeline.`,
		Example: `  aula check sessions.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			sessions, err := csvio.LoadSessions(path)
			if err != nil {
				return err
			}
			conflicts, err := timetable.DetectConflicts(sessions)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d sessions, %d conflicts\n", path, len(sessions), len(conflicts))
			PrintConflicts(out, conflicts, limit)
			if len(conflicts) > 0 {
				return ErrConflictsFound
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", -1, `Show at most this many, then "+N more"`)
	return cmd
}
