package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/csvio"
	"github.com/javiermolinar/aula/internal/scheduler"
	"github.com/javiermolinar/aula/internal/timetable"
)

func (a *App) importCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import [csv_path]",
		Short: "Import sessions from a CSV file",
		Long: `Import sessions from a CSV file into the current timetable.

By default the sessions are appended. With --replace the timetable is
replaced by the file's sessions. Every row is validated before anything is
stored, so a bad row leaves the timetable untouched.`,
		Example: `  aula import sessions.csv
  aula import sessions.csv --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("csv file does not exist: %s", path)
				}
				return fmt.Errorf("checking csv file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("csv path is a directory: %s", path)
			}

			sessions, err := csvio.LoadSessions(path)
			if err != nil {
				return err
			}

			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}
			count, err := importSessions(commandContext(cmd), sched, sessions, replace)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d sessions from %s\n", count, path)
			fmt.Fprintf(out, "%d conflicts in the timetable\n", len(sched.Conflicts()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the timetable instead of appending")
	return cmd
}

func importSessions(ctx context.Context, sched *scheduler.Scheduler, sessions []*timetable.Session, replace bool) (int, error) {
	for i, s := range sessions {
		if err := s.Validate(); err != nil {
			return 0, fmt.Errorf("session %d (%s): %w", i+1, s.CourseCode, err)
		}
	}

	if replace {
		if err := sched.Load(ctx, sessions); err != nil {
			return 0, err
		}
		return len(sessions), nil
	}

	imported := 0
	for _, s := range sessions {
		// Ids from another timetable would collide with ours.
		s.ID = 0
		if err := sched.Add(ctx, s); err != nil {
			return imported, fmt.Errorf("importing %s: %w", s.CourseCode, err)
		}
		imported++
	}
	return imported, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
