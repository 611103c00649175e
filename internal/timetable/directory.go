package timetable

import (
	"strings"
	"unicode"
)

// Directory assigns canonical ids to rooms and instructors.
// Names are matched after normalisation (trimmed, whitespace collapsed, case-folded),
// so "Dr. Smith" and " dr.  smith" resolve to the same instructor.
// A Directory is not safe for concurrent use; the Scheduler guards its own.
type Directory struct {
	rooms           map[string]RoomID
	instructors     map[string]InstructorID
	roomNames       map[RoomID]string
	instructorNames map[InstructorID]string
	nextRoom        RoomID
	nextInstructor  InstructorID
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:           make(map[string]RoomID),
		instructors:     make(map[string]InstructorID),
		roomNames:       make(map[RoomID]string),
		instructorNames: make(map[InstructorID]string),
	}
}

// RoomID returns the id for a room name, assigning a new one if needed.
// Blank names stay unresolved (0) and never match anything.
func (d *Directory) RoomID(name string) RoomID {
	key := NormalizeName(name)
	if key == "" {
		return 0
	}
	if id, ok := d.rooms[key]; ok {
		return id
	}
	d.nextRoom++
	for d.roomTaken(d.nextRoom) {
		d.nextRoom++
	}
	d.rooms[key] = d.nextRoom
	d.roomNames[d.nextRoom] = name
	return d.nextRoom
}

// InstructorID returns the id for an instructor name, assigning a new one if needed.
// Blank names stay unresolved (0) and never match anything.
func (d *Directory) InstructorID(name string) InstructorID {
	key := NormalizeName(name)
	if key == "" {
		return 0
	}
	if id, ok := d.instructors[key]; ok {
		return id
	}
	d.nextInstructor++
	for d.instructorTaken(d.nextInstructor) {
		d.nextInstructor++
	}
	d.instructors[key] = d.nextInstructor
	d.instructorNames[d.nextInstructor] = name
	return d.nextInstructor
}

func (d *Directory) roomTaken(id RoomID) bool {
	_, ok := d.roomNames[id]
	return ok
}

func (d *Directory) instructorTaken(id InstructorID) bool {
	_, ok := d.instructorNames[id]
	return ok
}

// RoomName returns the first display name registered for id.
func (d *Directory) RoomName(id RoomID) string {
	return d.roomNames[id]
}

// InstructorName returns the first display name registered for id.
func (d *Directory) InstructorName(id InstructorID) string {
	return d.instructorNames[id]
}

// Resolve fills zero RoomID and InstructorID fields from the session's names.
// Explicit ids are kept and reserved so generated ids never collide with them.
// An explicit id also claims its name when that name is not yet registered.
func (d *Directory) Resolve(s *Session) {
	d.reserve(s)
	if s.RoomID == 0 {
		s.RoomID = d.RoomID(s.Room)
	}
	if s.InstructorID == 0 {
		s.InstructorID = d.InstructorID(s.Instructor)
	}
}

// reserve registers the explicit ids a session carries.
func (d *Directory) reserve(s *Session) {
	if s.RoomID != 0 {
		if !d.roomTaken(s.RoomID) {
			d.roomNames[s.RoomID] = s.Room
		}
		if key := NormalizeName(s.Room); key != "" {
			if _, ok := d.rooms[key]; !ok {
				d.rooms[key] = s.RoomID
			}
		}
	}
	if s.InstructorID != 0 {
		if !d.instructorTaken(s.InstructorID) {
			d.instructorNames[s.InstructorID] = s.Instructor
		}
		if key := NormalizeName(s.Instructor); key != "" {
			if _, ok := d.instructors[key]; !ok {
				d.instructors[key] = s.InstructorID
			}
		}
	}
}

// ResolveAll resolves every session in order. Explicit ids across the whole slice are
// registered first so ids generated from names cannot collide with them.
func (d *Directory) ResolveAll(sessions []*Session) {
	for _, s := range sessions {
		if s != nil {
			d.reserve(s)
		}
	}
	for _, s := range sessions {
		if s != nil {
			d.Resolve(s)
		}
	}
}

// NormalizeName folds a display name into a lookup key.
func NormalizeName(name string) string {
	fields := strings.FieldsFunc(name, unicode.IsSpace)
	return strings.ToLower(strings.Join(fields, " "))
}
