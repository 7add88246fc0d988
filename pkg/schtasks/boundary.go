package schtasks

import (
	"fmt"
	"strings"
	"time"
)

// startBoundaryLayout is the local ISO-8601 form the task XML expects.
const startBoundaryLayout = "2006-01-02T15:04:05"

// ResolveStartBoundary combines an optional 24h "HH:MM" wall-clock time with
// today's date in now's location. A time already past today rolls forward to
// tomorrow, except for Once schedules where a past boundary is deliberately
// left as-is (the caller asked for a one-shot at that instant). No time at
// all means the boundary is now.
func ResolveStartBoundary(now time.Time, startTime string, kind ScheduleKind) (time.Time, error) {
	s := strings.TrimSpace(startTime)
	if s == "" {
		return now, nil
	}

	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, startTime)
	}

	b := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if b.Before(now) && kind != Once {
		b = b.AddDate(0, 0, 1)
	}
	return b, nil
}
