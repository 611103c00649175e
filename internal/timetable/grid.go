package timetable

import (
	"fmt"
	"strings"
)

// Default grid window: half-hour slots from 8:00 AM to 7:00 PM inclusive.
const (
	DefaultGridStart   = "8:00 AM"
	DefaultGridEnd     = "7:00 PM"
	DefaultSlotMinutes = 30
)

// LookupMode selects how sessions are placed into grid cells.
type LookupMode string

const (
	// LookupExact places a session only in the slot whose label equals its start time
	// string. Sessions that start off the grid (e.g. "9:15 AM") are not placed; Grid
	// reports them through Unaligned.
	LookupExact LookupMode = "exact"
	// LookupCovering places a session in every slot whose instant falls inside
	// [start, end).
	LookupCovering LookupMode = "covering"
)

// ParseLookupMode parses "exact" or "covering".
func ParseLookupMode(s string) (LookupMode, error) {
	switch LookupMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LookupExact:
		return LookupExact, nil
	case LookupCovering:
		return LookupCovering, nil
	default:
		return "", fmt.Errorf("unknown lookup mode %q (want exact or covering)", s)
	}
}

// Slot is one row of the week grid.
type Slot struct {
	Label   string // "9:30 AM"
	Minutes int    // minutes since midnight
}

// NewSlots builds slot labels from start to end inclusive, step minutes apart.
func NewSlots(start, end string, step int) ([]Slot, error) {
	if step <= 0 {
		return nil, fmt.Errorf("slot step must be positive, got %d", step)
	}
	from, err := ParseClock(start)
	if err != nil {
		return nil, fmt.Errorf("grid start: %w", err)
	}
	to, err := ParseClock(end)
	if err != nil {
		return nil, fmt.Errorf("grid end: %w", err)
	}
	if to < from {
		return nil, fmt.Errorf("grid end %s is before grid start %s", end, start)
	}

	slots := make([]Slot, 0, (to-from)/step+1)
	for m := from; m <= to; m += step {
		slots = append(slots, Slot{Label: FormatClock(m), Minutes: m})
	}
	return slots, nil
}

// DefaultSlots returns the 23 half-hour slots from 8:00 AM to 7:00 PM.
func DefaultSlots() []Slot {
	slots, err := NewSlots(DefaultGridStart, DefaultGridEnd, DefaultSlotMinutes)
	if err != nil {
		panic(err)
	}
	return slots
}

type cellKey struct {
	day  Weekday
	slot int
}

// Grid is a week of slots with sessions indexed by (day, slot).
// Build it once per session-list change; each lookup is then a map access.
type Grid struct {
	mode      LookupMode
	slots     []Slot
	byLabel   map[string]int
	cells     map[cellKey]*Session
	first     map[cellKey]bool
	contested map[cellKey]bool
	unaligned []*Session
}

// NewGrid indexes sessions onto slots using mode.
// When two sessions claim the same cell, the first in input order wins and the cell is
// marked contested.
func NewGrid(sessions []*Session, slots []Slot, mode LookupMode) *Grid {
	if mode == "" {
		mode = LookupExact
	}
	g := &Grid{
		mode:      mode,
		slots:     slots,
		byLabel:   make(map[string]int, len(slots)),
		cells:     make(map[cellKey]*Session),
		first:     make(map[cellKey]bool),
		contested: make(map[cellKey]bool),
	}
	for i, sl := range slots {
		g.byLabel[sl.Label] = i
	}

	for _, s := range sessions {
		if s == nil || !s.Day.Valid() {
			continue
		}
		switch mode {
		case LookupCovering:
			g.placeCovering(s)
		default:
			g.placeExact(s)
		}
	}
	return g
}

func (g *Grid) placeExact(s *Session) {
	idx, ok := g.byLabel[s.StartTime]
	if !ok {
		g.unaligned = append(g.unaligned, s)
		return
	}
	g.claim(cellKey{s.Day, idx}, s, true)
}

func (g *Grid) placeCovering(s *Session) {
	start, end, err := s.Minutes()
	if err != nil {
		g.unaligned = append(g.unaligned, s)
		return
	}
	placed := false
	for i, sl := range g.slots {
		if sl.Minutes >= start && sl.Minutes < end {
			g.claim(cellKey{s.Day, i}, s, !placed)
			placed = true
		}
	}
	if !placed {
		g.unaligned = append(g.unaligned, s)
	}
}

func (g *Grid) claim(k cellKey, s *Session, first bool) {
	if _, taken := g.cells[k]; taken {
		g.contested[k] = true
		return
	}
	g.cells[k] = s
	g.first[k] = first
}

// Mode returns the lookup mode the grid was built with.
func (g *Grid) Mode() LookupMode {
	return g.mode
}

// Slots returns the grid rows.
func (g *Grid) Slots() []Slot {
	return g.slots
}

// Lookup returns the session shown at (day, slot label), or nil.
func (g *Grid) Lookup(day Weekday, label string) *Session {
	idx, ok := g.byLabel[label]
	if !ok {
		return nil
	}
	return g.cells[cellKey{day, idx}]
}

// At returns the session at (day, slot index), or nil.
func (g *Grid) At(day Weekday, slot int) *Session {
	return g.cells[cellKey{day, slot}]
}

// StartsAt reports whether the cell is the first one its session occupies.
// In exact mode every occupied cell is a start.
func (g *Grid) StartsAt(day Weekday, slot int) bool {
	return g.first[cellKey{day, slot}]
}

// Contested reports whether more than one session claimed the cell.
func (g *Grid) Contested(day Weekday, slot int) bool {
	return g.contested[cellKey{day, slot}]
}

// Unaligned returns sessions the grid could not place.
func (g *Grid) Unaligned() []*Session {
	return g.unaligned
}

// Placed returns the number of occupied cells.
func (g *Grid) Placed() int {
	return len(g.cells)
}

// LookupSession is the unindexed form of an exact grid lookup: it scans sessions for
// the first one on day whose start time string equals label.
func LookupSession(sessions []*Session, day Weekday, label string) *Session {
	for _, s := range sessions {
		if s != nil && s.Day == day && s.StartTime == label {
			return s
		}
	}
	return nil
}
