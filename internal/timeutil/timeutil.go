package timeutil

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the canonical calendar-date format used across the API.
const DateLayout = "2006-01-02"

// Sentinel time-of-day written by legacy imports for sessions that were never
// checked out. Sessions ending exactly here are flagged for review.
const (
	suspectHour   = 23
	suspectMinute = 59
)

// MinutesBetween returns whole minutes from a to b, truncated toward zero.
func MinutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

// SplitHoursMinutes breaks a minute total into hours and leftover minutes.
func SplitHoursMinutes(total int) (hours, minutes int) {
	return total / 60, total % 60
}

// FormatHoursMinutes renders a minute total as "7h 45m".
func FormatHoursMinutes(total int) string {
	h, m := SplitHoursMinutes(total)
	return fmt.Sprintf("%dh %dm", h, m)
}

// SalaryForMinutes converts worked minutes into pay at the given hourly rate,
// rounded to 2 decimals.
func SalaryForMinutes(total int, hourlyRate float64) float64 {
	h, m := SplitHoursMinutes(total)
	salary := float64(h)*hourlyRate + float64(m)*hourlyRate/60
	return math.Round(salary*100) / 100
}

// IsSuspectEndTime reports whether the time-of-day is exactly the 23:59
// auto-close sentinel.
func IsSuspectEndTime(t time.Time) bool {
	return t.Hour() == suspectHour && t.Minute() == suspectMinute
}

// SameCalendarDay compares calendar dates in a's location, not instants.
func SameCalendarDay(a, b time.Time) bool {
	return a.Format(DateLayout) == b.In(a.Location()).Format(DateLayout)
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays advances t by n calendar days, for building half-open [from, to)
// query ranges.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddMonths advances t by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// PayPeriod returns the half-open payroll window containing t. Periods run
// from the 20th of a month at midnight to the 20th of the next.
func PayPeriod(t time.Time) (from, to time.Time) {
	from = time.Date(t.Year(), t.Month(), 20, 0, 0, 0, 0, t.Location())
	if t.Day() < 20 {
		from = AddMonths(from, -1)
	}
	return from, AddMonths(from, 1)
}
