package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/report"
)

func (a *App) reportCmd() *cobra.Command {
	var (
		advice bool
		model  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise the timetable and optionally ask for resolution advice",
		Long: `Display headline numbers, conflicts, instructor load and sessions that do
not fit the grid.

With --advice, the conflicts and the free slots around them are sent to the
configured LLM provider for suggested moves. Advice failures are reported
but do not fail the command.`,
		Example: `  aula report
  aula report --advice --model=llama3.2
  aula report --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}
			advisorCfg := a.config.Advisor
			if model != "" {
				advisorCfg.Model = model
			}

			r, err := report.Build(commandContext(cmd), sched, report.Options{
				IncludeAdvice: advice,
				Advisor:       advisorCfg,
				MaxConflicts:  limit,
			})
			if err != nil {
				return fmt.Errorf("building report: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printReport(out, r, limit)
			return nil
		},
	}

	cmd.Flags().BoolVar(&advice, "advice", false, "Ask the LLM for resolution suggestions")
	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Conflicts to show and to send for advice")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(out io.Writer, r *report.Report, limit int) {
	fmt.Fprintf(out, "\n  %s\n", formatHeader("TIMETABLE"))
	fmt.Fprintln(out, strings.Repeat("─", 74))
	PrintTotals(out, r.Totals)

	fmt.Fprintf(out, "\n  %s\n", formatHeader(fmt.Sprintf("CONFLICTS (%d)", len(r.Conflicts))))
	fmt.Fprintln(out, strings.Repeat("─", 74))
	PrintConflicts(out, r.Conflicts, limit)

	fmt.Fprintln(out)
	printWorkload(out, r.Workload)

	if len(r.Unaligned) > 0 {
		fmt.Fprintf(out, "\n  %s\n", formatWarning(fmt.Sprintf("Not on the grid (%d):", len(r.Unaligned))))
		for _, s := range r.Unaligned {
			fmt.Fprintf(out, "    %s %s %s  %s\n", formatCourse(s.CourseCode), s.Day.Short(), s.TimeRange(), s.Room)
		}
	}

	switch {
	case r.AdviceError != "":
		fmt.Fprintf(out, "\n  %s\n", formatWarning("Advice unavailable: "+r.AdviceError))
	case r.Advice != nil:
		fmt.Fprintf(out, "\n  %s\n", formatHeader("ADVICE"))
		fmt.Fprintln(out, strings.Repeat("─", 74))
		PrintAdviceWrapped(out, r.Advice.String(), 72)
	}
	fmt.Fprintln(out)
}
