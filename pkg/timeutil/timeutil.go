// Package timeutil provides UTC calendar helpers for the ProjectHub
// analytics engine. All deadline arithmetic works on whole UTC days so
// velocity windows and overdue checks are stable across server timezones.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// Date creates a UTC time with the given date at midnight.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the start of the day (00:00:00) in UTC.
func StartOfDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in UTC.
func EndOfDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 23, 59, 59, 999999999, time.UTC)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in UTC.
func StartOfWeek(t time.Time) time.Time {
	utc := t.UTC()
	weekday := int(utc.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(utc.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in UTC.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// IsSameDay checks if two times fall on the same UTC calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() &&
		u1.Month() == u2.Month() &&
		u1.Day() == u2.Day()
}

// DaysBetween calculates the number of whole days between two times.
// Returns a negative value when t2 is before t1.
func DaysBetween(t1, t2 time.Time) int {
	d1 := StartOfDay(t1)
	d2 := StartOfDay(t2)
	return int(d2.Sub(d1).Hours() / 24)
}

// DaysSince calculates the number of days from t until now, floored at 0.
func DaysSince(t time.Time) int {
	days := DaysBetween(t, Now())
	if days < 0 {
		return 0
	}
	return days
}

// Date formatting layouts.
const (
	// LayoutDate is the canonical date layout.
	LayoutDate = "2006-01-02"

	// LayoutDateTime is the canonical date-time layout.
	LayoutDateTime = "2006-01-02 15:04:05"
)

// FormatDateStr formats a time as "2006-01-02" in UTC.
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(LayoutDate)
}

// FormatDateTimeStr formats a time as "2006-01-02 15:04:05" in UTC.
func FormatDateTimeStr(t time.Time) string {
	return t.UTC().Format(LayoutDateTime)
}

// ParseDate parses a "2006-01-02" date string as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(LayoutDate, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid date %q: %w", value, err)
	}
	return t, nil
}

// FormatRelative formats a duration from now in human-readable form,
// e.g. "3 days ago" or "in 2 weeks". Used in exported report summaries.
func FormatRelative(t time.Time) string {
	now := Now()
	if t.Before(now) {
		return formatPastDuration(now.Sub(t))
	}
	return formatFutureDuration(t.Sub(now))
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%d weeks ago", int(d.Hours()/24/7))
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %d hours", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("in %d days", int(d.Hours()/24))
	default:
		return fmt.Sprintf("in %d weeks", int(d.Hours()/24/7))
	}
}
