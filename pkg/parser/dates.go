package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateSeparatorRe = regexp.MustCompile(`[-/]`)

var monthAbbrev = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// DateInterpreter reads ticket dates such as "10-Feb-2026" or "10/02/2026".
// Anything it cannot read becomes today's date.
type DateInterpreter struct {
	now func() time.Time
}

// NewDateInterpreter creates an interpreter. A nil now uses time.Now.
func NewDateInterpreter(now func() time.Time) *DateInterpreter {
	if now == nil {
		now = time.Now
	}
	return &DateInterpreter{now: now}
}

// Today returns the current calendar date in the clock's location as
// midnight UTC
func (d *DateInterpreter) Today() time.Time {
	n := d.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse interprets value as day, month, year. It never fails.
func (d *DateInterpreter) Parse(value string) time.Time {
	if t, ok := parseDayMonthYear(value); ok {
		return t
	}
	return d.Today()
}

func parseDayMonthYear(value string) (time.Time, bool) {
	parts := dateSeparatorRe.Split(strings.TrimSpace(value), -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, ok := parseMonth(parts[1])
	if !ok {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil || len(parts[2]) != 4 {
		return time.Time{}, false
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func parseMonth(value string) (time.Month, bool) {
	lower := strings.ToLower(value)
	if len(lower) >= 3 {
		if m, ok := monthAbbrev[lower[:3]]; ok {
			return m, true
		}
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return time.Month(n), true
}
