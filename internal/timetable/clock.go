package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// ParseClock converts a 12-hour clock string such as "9:00 AM" to minutes since midnight.
// "12:00 AM" is midnight (0) and "12:00 PM" is noon (720).
// Returns ErrInvalidTimeFormat unless the input is "H:MM AM" or "H:MM PM".
func ParseClock(s string) (int, error) {
	clock, meridiem, ok := strings.Cut(s, " ")
	if !ok || strings.Contains(meridiem, " ") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 1 || hour > 12 || !isDigits(hh) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 || !isDigits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	total := hour*60 + minute
	switch strings.ToUpper(meridiem) {
	case "AM":
		if hour == 12 {
			total -= 720
		}
	case "PM":
		if hour != 12 {
			total += 720
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return total, nil
}

// MustParseClock is like ParseClock but panics on malformed input.
// Intended for constants and tests.
func MustParseClock(s string) int {
	m, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FormatClock converts minutes since midnight to "H:MM AM|PM".
// Values outside a day are clamped.
func FormatClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= minutesPerDay {
		m = minutesPerDay - 1
	}
	hour := m / 60
	minute := m % 60

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

// ValidClock reports whether s parses as a 12-hour clock string.
func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
