// Package theme loads the TUI colour themes embedded as TOML files.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

// DefaultName is used when no theme is configured or the configured one is unknown.
const DefaultName = "mocha"

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Theme is the raw hex colours of one theme file.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // panels
	BgSelection string `toml:"bg_selection"` // list cursor
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"` // empty cells, hints
	Accent      string `toml:"accent"`   // title, slot labels
	Session     string `toml:"session"`
	Cancelled   string `toml:"cancelled"`
	Conflict    string `toml:"conflict"`
	Warning     string `toml:"warning"` // cursor, contested cells

	// Departments tints sessions by department, assigned by name hash.
	// Empty means every session uses Session.
	Departments []string `toml:"departments"`

	Modal ModalTheme `toml:"modal"`
}

// ModalTheme overrides colours for the form and confirmation modals.
type ModalTheme struct {
	Bg     string `toml:"bg"`
	Border string `toml:"border"`
	Text   string `toml:"text"`
	Muted  string `toml:"muted"`
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load reads a theme by name. Unknown names load the default theme.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !IsAvailable(name) {
		name = DefaultName
	}

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.fillModal()
	return &t, nil
}

// fillModal falls back to the base colours for modal colours the file leaves out.
func (t *Theme) fillModal() {
	m := &t.Modal
	m.Bg = firstSet(m.Bg, t.BgHighlight, t.Bg)
	m.Border = firstSet(m.Border, t.Accent)
	m.Text = firstSet(m.Text, t.Fg)
	m.Muted = firstSet(m.Muted, t.FgMuted)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns the embedded theme names, default first.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
