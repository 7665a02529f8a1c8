package daycount

import (
	"time"

	"github.com/wicaksana/loan-engine/internal/domain"
)

// DaysInYear maps a year convention to the day count used as the interest
// denominator. Unknown conventions fall back to 365, matching the lenient
// legacy behavior.
func DaysInYear(conv domain.DaysInYearType, ref time.Time) int {
	switch conv {
	case domain.DaysInYear360:
		return 360
	case domain.DaysInYear364:
		return 364
	case domain.DaysInYear365:
		return 365
	case domain.DaysInYearActual:
		if IsLeapYear(ref.Year()) {
			return 366
		}
		return 365
	default:
		return 365
	}
}

// DaysInMonth maps a month convention to the day count of ref's month.
// Unknown conventions fall back to 30.
func DaysInMonth(conv domain.DaysInMonthType, ref time.Time) int {
	switch conv {
	case domain.DaysInMonthActual:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, 1, -1).Day()
	default:
		return 30
	}
}

// DaysBetween returns the calendar day count end - start. A zero time on
// either side means "no period" and yields 0; callers treat that as a no-op.
func DaysBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// IsLeapYear follows the proleptic Gregorian rules.
func IsLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return year%400 == 0
}
