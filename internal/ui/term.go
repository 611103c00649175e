package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Room double-bookings: bold red
	colorRoom = color.New(color.FgRed, color.Bold)

	// Instructor double-bookings: bold magenta
	colorInstructor = color.New(color.FgMagenta, color.Bold)

	// Warnings such as off-grid starts: yellow
	colorWarning = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Stats: green for healthy numbers
	colorStats = color.New(color.FgGreen)

	// Course codes: cyan
	colorCourse = color.New(color.FgCyan)

	// Muted: for secondary information and cancelled sessions
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatRoom(s string) string {
	return colorRoom.Sprint(s)
}

func formatInstructor(s string) string {
	return colorInstructor.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatStats formats text for statistics.
func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatCourse(s string) string {
	return colorCourse.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
