package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/timetable"
)

func (a *App) listCmd() *cobra.Command {
	var (
		department string
		day        string
		instructor string
		room       string
		status     string
		search     string
		sortBy     string
		desc       bool
		page       int
		pageSize   int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Long: `List the sessions of the timetable.

Sessions involved in a conflict are marked with "!". With no --sort the
listing keeps the order sessions were added in.`,
		Example: `  aula list
  aula list --department="Computer Science" --day=mon
  aula list --sort=enrolled --desc --page=1 --page-size=10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}

			q := timetable.Query{
				Department: department,
				Instructor: instructor,
				Room:       room,
				Search:     search,
				Desc:       desc,
				Page:       page,
				PageSize:   pageSize,
			}
			if q.Sort, err = timetable.ParseSortField(sortBy); err != nil {
				return err
			}
			if day != "" {
				d, err := timetable.ParseWeekday(day)
				if err != nil {
					return err
				}
				q.Day = &d
			}
			if status != "" {
				if q.Status, err = timetable.ParseStatus(status); err != nil {
					return err
				}
			}

			result, err := sched.Page(commandContext(cmd), q)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(result.Sessions) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}

			opts := PrintOpts{
				Verbose:        verbose,
				ShowEnrollment: true,
				Conflicting:    timetable.ConflictingSessionIDs(sched.Conflicts()),
			}
			width := opts.CalcMaxNameWidth(28)
			for _, s := range result.Sessions {
				PrintSessionRow(out, s, opts, width)
			}

			if q.Paged() {
				fmt.Fprintf(out, "\n  %s\n", formatMuted(fmt.Sprintf("Page %d of %d (%d sessions)",
					result.Page, result.TotalPages, result.TotalItems)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&department, "department", "", "Only sessions of this department")
	cmd.Flags().StringVar(&day, "day", "", "Only sessions on this day (Monday or Mon)")
	cmd.Flags().StringVar(&instructor, "instructor", "", "Only sessions taught by this instructor")
	cmd.Flags().StringVar(&room, "room", "", "Only sessions in this room")
	cmd.Flags().StringVar(&status, "status", "", "Only sessions with this status (Active, Inactive, Cancelled)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match course code, course name or instructor")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by day, start, course, instructor, room or enrolled")
	cmd.Flags().BoolVar(&desc, "desc", false, "Reverse the sort order")
	cmd.Flags().IntVar(&page, "page", 0, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Sessions per page when --page is set")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full course names")

	return cmd
}
