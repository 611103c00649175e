package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// placeOverlay draws box centred on top of base, which is first padded or cut to
// width x height. Lines of base outside the box are kept as they are.
func placeOverlay(base, box string, width, height int) string {
	if width <= 0 || height <= 0 || box == "" {
		return base
	}

	baseLines := normalizeLines(base, width, height)
	boxLines := strings.Split(strings.TrimRight(box, "\n"), "\n")

	boxW := 0
	for _, l := range boxLines {
		boxW = max(boxW, lipgloss.Width(l))
	}
	boxW = min(boxW, width)
	boxH := min(len(boxLines), height)

	top := max((height-boxH)/2, 0)
	left := max((width-boxW)/2, 0)

	for i := 0; i < boxH; i++ {
		line := boxLines[i]
		if w := lipgloss.Width(line); w > boxW {
			line = ansi.Cut(line, 0, boxW)
		} else if w < boxW {
			line += strings.Repeat(" ", boxW-w)
		}
		row := baseLines[top+i]
		baseLines[top+i] = ansi.Cut(row, 0, left) + ansi.ResetStyle + line + ansi.ResetStyle + ansi.Cut(row, left+boxW, width)
	}

	return strings.Join(baseLines, "\n")
}

// normalizeLines returns exactly height lines, each exactly width cells wide.
func normalizeLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	for i, line := range lines {
		w := lipgloss.Width(line)
		switch {
		case w > width:
			lines[i] = ansi.Cut(line, 0, width)
		case w < width:
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return lines
}
