package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/csvio"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		what string
		dest string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions or conflicts as CSV",
		Long: `Write the current sessions or conflicts as CSV to stdout or a file.

Exported sessions can be loaded again with --from or imported with import.`,
		Example: `  aula export > sessions.csv
  aula export --what=conflicts --out=conflicts.csv
  aula export --seed=7 --sessions=100 --out=mock.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if dest != "" {
				path, err := resolvePath(dest)
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", path, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			switch what {
			case "sessions":
				err = csvio.WriteSessions(w, sched.All())
			case "conflicts":
				err = csvio.WriteConflicts(w, sched.Conflicts())
			default:
				return fmt.Errorf("unknown export %q (want sessions or conflicts)", what)
			}
			if err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&what, "what", "sessions", "What to export: sessions or conflicts")
	cmd.Flags().StringVarP(&dest, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}
