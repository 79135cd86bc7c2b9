package util

import (
    "strconv"
    "time"
)

// DayLayout is the calendar-day layout used for game dates.
const DayLayout = "2006-01-02"

// ParseDate tries YYYY-MM-DD, RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
// The result is truncated to a UTC calendar day.
func ParseDate(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(DayLayout, s); err == nil {
        return Day(t), true
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return Day(t), true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return Day(t), true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return Day(time.Unix(ts, 0)), true
    }
    return time.Time{}, false
}

// ParseDateDefault parses a date or returns def if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
    if t, ok := ParseDate(s); ok {
        return t
    }
    return def
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
    return t.UTC().Format(DayLayout)
}
