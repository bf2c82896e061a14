package util

import (
    "strconv"
    "strings"
    "time"
)

// DateLayout is the calendar-day layout used by caches and JSON payloads.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, calendar dates and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(DateLayout, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
    return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
    return t.Format(DateLayout)
}

// Day truncates t to its calendar day in UTC, keeping the wall-clock date.
func Day(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
    return Day(a).Equal(Day(b))
}

// AddMonths shifts t by n calendar months, clamping the day to the end of
// the target month (Mar 31 - 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
    y, m, d := t.Date()
    first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
    last := first.AddDate(0, 1, -1).Day()
    if d > last {
        d = last
    }
    return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysBetween returns the whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
    return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// MonthYear renders t as lowercase abbreviated month + year, e.g. "feb2026".
func MonthYear(t time.Time) string {
    return strings.ToLower(t.Format("Jan2006"))
}
