// Package interval parses and applies the compact repeat-interval strings
// persisted on actions and projects ("1d", "2w", "1m", "1y").
package interval

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Unit is a calendar unit of a repeat interval.
type Unit string

// Valid interval units.
const (
	Day   Unit = "d"
	Week  Unit = "w"
	Month Unit = "m"
	Year  Unit = "y"
)

// ErrInvalidFormat is returned when an interval string does not match
// the required pattern: one or more digits followed by exactly one of
// d, w, m, y. The unit letter is case-sensitive.
var ErrInvalidFormat = errors.New("invalid interval format")

// Interval is the parsed form of an interval string.
type Interval struct {
	Unit  Unit
	Count int
}

const daysPerWeek = 7

// Parse parses an interval string like "1d" or "3m".
// The grammar is ^\d+[dwmy]$ - anything else fails with ErrInvalidFormat.
func Parse(s string) (Interval, error) {
	if len(s) < 2 {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	unit := Unit(s[len(s)-1])

	switch unit {
	case Day, Week, Month, Year:
	default:
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	digits := s[:len(s)-1]

	for _, c := range digits {
		if c < '0' || c > '9' {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
	}

	// Leading zeros would not round-trip through Format, and a zero
	// count is not a usable repeat cadence.
	if digits[0] == '0' {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	count, err := strconv.Atoi(digits)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	return Interval{Unit: unit, Count: count}, nil
}

// Format renders an interval back to its string form.
// Format(Parse(s)) == s for every valid s.
func Format(iv Interval) string {
	return strconv.Itoa(iv.Count) + string(iv.Unit)
}

// Add adds the interval to base in civil-calendar terms. Day and week
// units are exact (a week is 7 days). Month and year arithmetic clamps
// to the last valid day of the target month, so Jan 31 + 1m is the last
// day of February rather than a spillover into March.
func Add(base time.Time, iv Interval) time.Time {
	switch iv.Unit {
	case Day:
		return base.AddDate(0, 0, iv.Count)
	case Week:
		return base.AddDate(0, 0, iv.Count*daysPerWeek)
	case Month:
		return addMonths(base, iv.Count)
	case Year:
		return addMonths(base, iv.Count*12)
	}

	// Unreachable for intervals produced by Parse.
	return base
}

// addMonths adds months with end-of-month clamping. Go's AddDate
// normalizes an overflowing day forward into the next month; the
// repeat contract wants Jan 31 + 1m to land on Feb 28/29 instead.
func addMonths(base time.Time, months int) time.Time {
	year, month, day := base.Date()

	totalMonth := int(month) - 1 + months
	targetYear := year + totalMonth/12
	targetMonth := time.Month(totalMonth%12 + 1)

	if totalMonth < 0 {
		// Go's integer division truncates toward zero; normalize so the
		// month index stays in [0, 11].
		targetYear = year + (totalMonth-11)/12
		targetMonth = time.Month((totalMonth%12+12)%12 + 1)
	}

	last := daysIn(targetYear, targetMonth)
	if day > last {
		day = last
	}

	hour, minute, sec := base.Clock()

	return time.Date(targetYear, targetMonth, day, hour, minute, sec, base.Nanosecond(), base.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
