// file: internals/helpers/dbtime/time_helper.go
package dbtime

import "time"

// DateOf returns the calendar date of t as seen in loc, normalized to
// midnight UTC so it compares equal across drivers.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses "YYYY-MM-DD" into the same normalized form as DateOf.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// RoundMinutes rounds d to the nearest whole minute (half away from zero).
func RoundMinutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

// CeilMinutes rounds a positive d up to whole minutes.
func CeilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	m := d / time.Minute
	if d%time.Minute != 0 {
		m++
	}
	return int(m)
}

// PtrIn converts an optional timestamp into loc for display.
func PtrIn(t *time.Time, loc *time.Location) *time.Time {
	if t == nil || loc == nil {
		return t
	}
	v := t.In(loc)
	return &v
}
