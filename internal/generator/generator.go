// Package generator produces reproducible mock timetables.
package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/javiermolinar/aula/internal/timetable"
)

// Course is one entry of the course catalogue.
type Course struct {
	Code       string
	Name       string
	Department string
}

// Catalog lists the pools sessions are drawn from.
type Catalog struct {
	Courses     []Course
	Instructors []string
	Rooms       []string
}

// DefaultCatalog returns the built-in course, instructor and room pools.
func DefaultCatalog() Catalog {
	return Catalog{
		Courses: []Course{
			{"CS101", "Introduction to Programming", "Computer Science"},
			{"CS201", "Data Structures", "Computer Science"},
			{"CS301", "Algorithms", "Computer Science"},
			{"CS350", "Operating Systems", "Computer Science"},
			{"MATH101", "Calculus I", "Mathematics"},
			{"MATH201", "Linear Algebra", "Mathematics"},
			{"MATH301", "Probability", "Mathematics"},
			{"PHYS101", "General Physics", "Physics"},
			{"PHYS210", "Electromagnetism", "Physics"},
			{"CHEM101", "General Chemistry", "Chemistry"},
			{"BIO101", "Cell Biology", "Biology"},
			{"ENG102", "Academic Writing", "English"},
			{"HIST110", "Modern History", "History"},
			{"ECON101", "Microeconomics", "Economics"},
			{"ECON202", "Macroeconomics", "Economics"},
		},
		Instructors: []string{
			"Dr. Sarah Johnson",
			"Dr. Michael Chen",
			"Prof. Emily Davis",
			"Dr. Robert Wilson",
			"Prof. Maria Garcia",
			"Dr. James Brown",
			"Dr. Lisa Anderson",
			"Prof. David Martinez",
		},
		Rooms: []string{
			"Room 101", "Room 102", "Room 201", "Room 202",
			"Lab A", "Lab B", "Hall 1", "Hall 2",
		},
	}
}

// Options controls generation.
type Options struct {
	Seed     uint64
	Sessions int
	// UnalignedShare is the fraction (0..1) of sessions that start a quarter past the hour.
	UnalignedShare float64
	// Slots bounds start and end times. Defaults to timetable.DefaultSlots.
	Slots   []timetable.Slot
	Catalog Catalog
}

// DefaultSessions is the timetable size used when Options.Sessions is zero.
const DefaultSessions = 40

var durations = []int{60, 90, 120}

// Generator draws sessions from a catalogue with a seeded source.
type Generator struct {
	rng  *rand.Rand
	opts Options
}

// New creates a Generator. The same options always yield the same sessions.
func New(opts Options) (*Generator, error) {
	if opts.Sessions < 0 {
		return nil, fmt.Errorf("session count cannot be negative: %d", opts.Sessions)
	}
	if opts.Sessions == 0 {
		opts.Sessions = DefaultSessions
	}
	if opts.UnalignedShare < 0 || opts.UnalignedShare > 1 {
		return nil, fmt.Errorf("unaligned share must be between 0 and 1, got %g", opts.UnalignedShare)
	}
	if len(opts.Slots) == 0 {
		opts.Slots = timetable.DefaultSlots()
	}
	if len(opts.Slots) < 2 {
		return nil, fmt.Errorf("need at least two slots, got %d", len(opts.Slots))
	}
	if len(opts.Catalog.Courses) == 0 && len(opts.Catalog.Instructors) == 0 && len(opts.Catalog.Rooms) == 0 {
		opts.Catalog = DefaultCatalog()
	}
	if len(opts.Catalog.Courses) == 0 || len(opts.Catalog.Instructors) == 0 || len(opts.Catalog.Rooms) == 0 {
		return nil, fmt.Errorf("catalog needs courses, instructors and rooms")
	}

	return &Generator{
		rng:  rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		opts: opts,
	}, nil
}

// Generate returns opts.Sessions validated sessions with ids 1..n.
func (g *Generator) Generate() []*timetable.Session {
	sessions := make([]*timetable.Session, 0, g.opts.Sessions)
	for i := range g.opts.Sessions {
		s := g.session()
		s.ID = int64(i + 1)
		sessions = append(sessions, s)
	}
	return sessions
}

func (g *Generator) session() *timetable.Session {
	c := pick(g.rng, g.opts.Catalog.Courses)
	start, end := g.times()
	capacity := 20 + g.rng.IntN(41)

	return &timetable.Session{
		CourseCode: c.Code,
		CourseName: c.Name,
		Department: c.Department,
		Instructor: pick(g.rng, g.opts.Catalog.Instructors),
		Day:        timetable.Weekday(g.rng.IntN(len(timetable.Weekdays()))),
		StartTime:  timetable.FormatClock(start),
		EndTime:    timetable.FormatClock(end),
		Room:       pick(g.rng, g.opts.Catalog.Rooms),
		Capacity:   capacity,
		Enrolled:   g.rng.IntN(capacity + 6),
		Status:     g.status(),
	}
}

// times picks a start slot and a duration, clipped so the session ends by the last slot.
// The last slot itself is never a start.
func (g *Generator) times() (start, end int) {
	slots := g.opts.Slots
	last := slots[len(slots)-1].Minutes

	start = slots[g.rng.IntN(len(slots)-1)].Minutes
	if g.opts.UnalignedShare > 0 && g.rng.Float64() < g.opts.UnalignedShare {
		if start+15 < last {
			start += 15
		}
	}
	end = min(start+durations[g.rng.IntN(len(durations))], last)
	return start, end
}

func (g *Generator) status() timetable.Status {
	switch n := g.rng.IntN(100); {
	case n < 80:
		return timetable.StatusActive
	case n < 90:
		return timetable.StatusInactive
	default:
		return timetable.StatusCancelled
	}
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// Generate is a shorthand for New(opts) followed by Generate.
func Generate(opts Options) ([]*timetable.Session, error) {
	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	return g.Generate(), nil
}
