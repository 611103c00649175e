package theme

import (
	"hash/fnv"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette is a Theme resolved into the colours the grid and list draw with.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Conflict    lipgloss.Color
	Warning     lipgloss.Color

	// Cell backgrounds and the text colour readable on each.
	SessionBg      lipgloss.Color
	SessionBgAlt   lipgloss.Color
	CancelledBg    lipgloss.Color
	ConflictBg     lipgloss.Color
	TextOnSession  lipgloss.Color
	TextOnConflict lipgloss.Color
	TextOnWarning  lipgloss.Color

	Departments []Tint

	ModalBg     lipgloss.Color
	ModalBorder lipgloss.Color
	ModalText   lipgloss.Color
	ModalMuted  lipgloss.Color
}

// Tint is a cell background with its readable foreground.
type Tint struct {
	Bg lipgloss.Color
	Fg lipgloss.Color
}

// NewPalette resolves t. A nil theme resolves the default one.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	bg := parseRGB(t.Bg)
	light := bg.luminance() > 0.55
	sessionBg := cellShade(parseRGB(t.Session), bg, light)
	conflictBg := cellShade(parseRGB(t.Conflict), bg, light)
	cancelledBg := parseRGB(t.Cancelled).blend(bg, 0.7)

	alt := sessionBg.blend(rgb{255, 255, 255}, 0.25)
	if light {
		alt = sessionBg.blend(rgb{}, 0.1)
	}

	fg := parseRGB(t.Fg)
	p := &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Conflict:    lipgloss.Color(t.Conflict),
		Warning:     lipgloss.Color(t.Warning),

		SessionBg:      sessionBg.color(),
		SessionBgAlt:   alt.color(),
		CancelledBg:    cancelledBg.color(),
		ConflictBg:     conflictBg.color(),
		TextOnSession:  readableOn(sessionBg, bg, fg).color(),
		TextOnConflict: readableOn(conflictBg, bg, fg).color(),
		TextOnWarning:  readableOn(parseRGB(t.Warning), bg, fg).color(),

		ModalBg:     lipgloss.Color(t.Modal.Bg),
		ModalBorder: lipgloss.Color(t.Modal.Border),
		ModalText:   lipgloss.Color(t.Modal.Text),
		ModalMuted:  lipgloss.Color(t.Modal.Muted),
	}

	for _, hex := range t.Departments {
		shade := cellShade(parseRGB(hex), bg, light)
		p.Departments = append(p.Departments, Tint{Bg: shade.color(), Fg: readableOn(shade, bg, fg).color()})
	}
	return p
}

// Department returns the tint for a department name. ok is false when the
// theme defines no department tints or the name is empty.
func (p *Palette) Department(name string) (t Tint, ok bool) {
	if len(p.Departments) == 0 || name == "" {
		return Tint{}, false
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return p.Departments[h.Sum32()%uint32(len(p.Departments))], true
}

// cellShade turns an accent into a grid cell background: blended into light
// backgrounds, darkened on dark ones.
func cellShade(accent, bg rgb, light bool) rgb {
	if light {
		return accent.blend(bg, 0.75)
	}
	return accent.scale(0.5, 40)
}

// readableOn picks whichever of the two text colours contrasts more with bg.
func readableOn(cell, a, b rgb) rgb {
	if contrast(cell, a) >= contrast(cell, b) {
		return a
	}
	return b
}

func contrast(a, b rgb) float64 {
	la, lb := a.luminance(), b.luminance()
	return (max(la, lb) + 0.05) / (min(la, lb) + 0.05)
}

// rgb is an 8-bit colour. Unparseable hex strings become black.
type rgb struct{ r, g, b uint8 }

func parseRGB(hex string) rgb {
	if len(hex) != 7 || hex[0] != '#' {
		return rgb{}
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return rgb{}
	}
	return rgb{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

func (c rgb) hex() string {
	const digits = "0123456789abcdef"
	return string([]byte{'#',
		digits[c.r>>4], digits[c.r&0xf],
		digits[c.g>>4], digits[c.g&0xf],
		digits[c.b>>4], digits[c.b&0xf],
	})
}

func (c rgb) color() lipgloss.Color {
	return lipgloss.Color(c.hex())
}

// scale multiplies each channel by factor, never going below floor.
func (c rgb) scale(factor float64, floor uint8) rgb {
	f := func(v uint8) uint8 {
		return max(uint8(float64(v)*factor), floor)
	}
	return rgb{f(c.r), f(c.g), f(c.b)}
}

// blend moves c towards o by ratio in [0, 1].
func (c rgb) blend(o rgb, ratio float64) rgb {
	ratio = min(max(ratio, 0), 1)
	f := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-ratio) + float64(y)*ratio)
	}
	return rgb{f(c.r, o.r), f(c.g, o.g), f(c.b, o.b)}
}

// luminance is the WCAG relative luminance.
func (c rgb) luminance() float64 {
	lin := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.04045 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}
