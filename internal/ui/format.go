package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/aula/internal/timetable"
)

// PrintOpts configures session printing behavior.
type PrintOpts struct {
	Verbose        bool           // Show full course names
	ShowEnrollment bool           // Show enrolled/capacity column
	MaxNameWidth   int            // Maximum course name width (0 = auto)
	Conflicting    map[int64]bool // Sessions to mark with "!"
}

// CalcMaxNameWidth calculates the maximum course name width based on options.
func (o PrintOpts) CalcMaxNameWidth(defaultWidth int) int {
	if o.MaxNameWidth > 0 {
		return o.MaxNameWidth
	}
	if !o.Verbose {
		return defaultWidth
	}
	// "  ! ● #123  Mon  10:00 AM-11:30 AM  CS101     " is about 46 columns,
	// room and instructor take about 40 more.
	overhead := 86
	if o.ShowEnrollment {
		overhead += 8
	}
	available := termWidth() - overhead
	if available > defaultWidth {
		return available
	}
	return defaultWidth
}

// PrintSessionRow prints a single session row with consistent formatting.
func PrintSessionRow(w io.Writer, s *timetable.Session, opts PrintOpts, maxNameWidth int) {
	mark := " "
	if opts.Conflicting[s.ID] {
		mark = formatRoom("!")
	}

	name := ansi.Truncate(s.CourseName, maxNameWidth, "…")
	code := formatCourse(fmt.Sprintf("%-8s", s.CourseCode))
	if s.IsCancelled() {
		code = formatMuted(fmt.Sprintf("%-8s", s.CourseCode))
	}

	fmt.Fprintf(w, "  %s %s #%-4d %s  %-17s  %s  %-*s  %-12s  %s",
		mark, statusSymbol(s.Status), s.ID, s.Day.Short(), s.TimeRange(),
		code, maxNameWidth, name, s.Room, s.Instructor)
	if opts.ShowEnrollment {
		enrolled := fmt.Sprintf("%d/%d", s.Enrolled, s.Capacity)
		if s.Enrolled > s.Capacity {
			enrolled = formatWarning(enrolled)
		}
		fmt.Fprintf(w, "  %s", enrolled)
	}
	fmt.Fprintln(w)
}

// PrintConflict prints one conflict line.
func PrintConflict(w io.Writer, c timetable.Conflict) {
	label := formatInstructor(string(c.Type))
	if c.Type == timetable.RoomConflict {
		label = formatRoom(string(c.Type))
	}
	fmt.Fprintf(w, "  #%-3d %s  %s\n", c.ID, label, c.Description)
}

// PrintConflicts prints at most limit conflicts followed by a "+N more" line.
// A negative limit prints everything.
func PrintConflicts(w io.Writer, conflicts []timetable.Conflict, limit int) {
	if len(conflicts) == 0 {
		fmt.Fprintf(w, "  %s\n", formatStats("No conflicts."))
		return
	}
	shown, more := timetable.Summarize(conflicts, limit)
	for _, c := range shown {
		PrintConflict(w, c)
	}
	if more > 0 {
		fmt.Fprintf(w, "  %s\n", formatMuted(fmt.Sprintf("+%d more", more)))
	}
}

// PrintTotals prints the headline counts line.
func PrintTotals(w io.Writer, t timetable.Totals) {
	fmt.Fprintf(w, "  Sessions: %d (%d active, %d cancelled)  |  Seats: %d/%d\n",
		t.Sessions, t.Active, t.Cancelled, t.Enrolled, t.Capacity)

	conflicts := fmt.Sprintf("Room conflicts: %d  |  Instructor conflicts: %d",
		t.RoomConflicts, t.InstructorConflicts)
	if t.RoomConflicts+t.InstructorConflicts == 0 {
		conflicts = formatStats(conflicts)
	} else {
		conflicts = formatRoom(conflicts)
	}
	fmt.Fprintf(w, "  %s\n", conflicts)

	if t.OverCapacity > 0 {
		fmt.Fprintf(w, "  %s\n", formatWarning(fmt.Sprintf("Over capacity: %d", t.OverCapacity)))
	}
}

// UsageBar creates an ASCII bar for a percentage.
func UsageBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := (percent * width) / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", bar, formatStats(fmt.Sprintf("%3d%%", percent)))
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// statusSymbol returns the status indicator for a session.
func statusSymbol(s timetable.Status) string {
	switch s {
	case timetable.StatusActive:
		return "●"
	case timetable.StatusInactive:
		return "○"
	case timetable.StatusCancelled:
		return "✗"
	default:
		return "?"
	}
}

// PrintAdviceWrapped formats and prints advisor text preserving structure.
func PrintAdviceWrapped(w io.Writer, text string, width int) {
	text = stripMarkdownCodeBlocks(text)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix, content, contentWidth, isHeader := parseAdviceLine(trimmed, width)
		if isHeader {
			fmt.Fprintln(w)
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}
		wrapAndPrint(w, content, prefix, contentWidth)
	}
}

// parseAdviceLine returns the prefix, content and width to print a line with.
func parseAdviceLine(trimmed string, width int) (prefix, content string, contentWidth int, isHeader bool) {
	prefix = "  "
	content = trimmed
	contentWidth = width - 2

	switch {
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		prefix = "    • "
		content = strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		contentWidth = width - 6

	case strings.HasPrefix(trimmed, "#") && !isConflictRef(trimmed):
		content = strings.TrimLeft(trimmed, "# ")
		isHeader = true

	case isConflictRef(trimmed):
		// "#12 Move CS101 ..." from Advice.String
		idx := strings.Index(trimmed, " ")
		if idx < 0 {
			break
		}
		prefix = "  " + trimmed[:idx] + " "
		content = strings.TrimSpace(trimmed[idx+1:])
		contentWidth = width - len(prefix)

	case isNumberedItem(trimmed):
		idx := strings.Index(trimmed, ".")
		prefix = "  " + trimmed[:idx+1] + " "
		content = strings.TrimSpace(trimmed[idx+1:])
		contentWidth = width - len(prefix)
	}

	return prefix, content, contentWidth, isHeader
}

// isConflictRef checks if a line starts with "#" followed by a digit.
func isConflictRef(s string) bool {
	return len(s) > 1 && s[0] == '#' && s[1] >= '0' && s[1] <= '9'
}

// isNumberedItem checks if a line starts with a number followed by a period.
func isNumberedItem(s string) bool {
	if len(s) < 3 {
		return false
	}
	if s[0] < '1' || s[0] > '9' {
		return false
	}
	if s[1] == '.' {
		return true
	}
	if s[1] >= '0' && s[1] <= '9' && len(s) > 3 && s[2] == '.' {
		return true
	}
	return false
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if width < 10 {
		width = 10
	}
	continuation := strings.Repeat(" ", ansi.StringWidth(prefix))
	for i, line := range strings.Split(ansi.Wordwrap(strings.Join(strings.Fields(text), " "), width, ""), "\n") {
		p := continuation
		if i == 0 {
			p = prefix
		}
		fmt.Fprintln(w, colorWarning.Sprint(p+line))
	}
}

// stripMarkdownCodeBlocks removes ```...``` fences from text.
func stripMarkdownCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if !inCodeBlock {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
