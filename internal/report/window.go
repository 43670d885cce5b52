package report

import (
	"fmt"
	"time"

	"github.com/segyhp/installment-engine/internal/domain"
)

var (
	allTimeStart = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	allTimeEnd   = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Window is an open interval: both bounds are excluded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies strictly between Start and End.
func (w Window) Contains(t time.Time) bool {
	return t.After(w.Start) && t.Before(w.End)
}

// WindowFor resolves a named range relative to now. Calendar windows start one
// nanosecond before the first instant of the period so that the whole period
// is inside the open interval.
func WindowFor(timeRange string, now time.Time) (Window, error) {
	loc := now.Location()
	switch timeRange {
	case domain.TimeRangeMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return Window{Start: first.Add(-time.Nanosecond), End: first.AddDate(0, 1, 0)}, nil
	case domain.TimeRangeYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Window{Start: first.Add(-time.Nanosecond), End: first.AddDate(1, 0, 0)}, nil
	case domain.TimeRangeAll, "":
		return Window{Start: allTimeStart, End: allTimeEnd}, nil
	default:
		return Window{}, fmt.Errorf("unknown time range %q", timeRange)
	}
}

// IsValidTimeRange reports whether WindowFor accepts the range name.
func IsValidTimeRange(timeRange string) bool {
	_, err := WindowFor(timeRange, time.Now())
	return err == nil
}
