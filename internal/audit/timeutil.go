package audit

import (
	"time"
)

// DefaultGracePeriod is the window after the due date in which grading is
// still in time.
const DefaultGracePeriod = 9 * 24 * time.Hour

const displayDateLayout = "02/01/2006"

// Clock returns the instant used as "now" for one assignment.
type Clock func() time.Time

// FrozenClock always answers t.
func FrozenClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// ParseTimestamp converts a wire timestamp to a UTC instant.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &ParseError{Field: "timestamp", Value: s, Err: err}
	}
	return t.UTC(), nil
}

func Deadline(due time.Time, grace time.Duration) time.Time {
	return due.Add(grace)
}

// FormatLocal renders t as day/month/year in loc.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(displayDateLayout)
}

// DaysLate counts whole calendar days in loc from the deadline to now,
// never below zero.
func DaysLate(now, deadline time.Time, loc *time.Location) int {
	days := int(localDate(now, loc).Sub(localDate(deadline, loc)) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

func localDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
