package analytics

import (
	"fmt"
	"time"
)

// Range is a selectable reporting period
type Range string

const (
	Range7Days  Range = "7d"
	Range30Days Range = "30d"
	Range90Days Range = "90d"
	RangeAll    Range = "all"
)

// ParseRange accepts "7d", "30d", "90d", "all" and the bare day counts
func ParseRange(s string) (Range, error) {
	switch s {
	case "7d", "7":
		return Range7Days, nil
	case "30d", "30", "":
		return Range30Days, nil
	case "90d", "90":
		return Range90Days, nil
	case "all":
		return RangeAll, nil
	default:
		return "", fmt.Errorf("unknown range %q", s)
	}
}

// Days is the length of the range in days, 0 for RangeAll
func (r Range) Days() int {
	switch r {
	case Range7Days:
		return 7
	case Range30Days:
		return 30
	case Range90Days:
		return 90
	default:
		return 0
	}
}

// Window is a time interval. The end is included only when IncludeEnd is set.
type Window struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	IncludeEnd bool      `json:"-"`
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	if w.IncludeEnd {
		return !t.After(w.End)
	}
	return t.Before(w.End)
}

// Duration is the length of the window
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Period is a selected window and the window of equal length just before it
type Period struct {
	Range    Range  `json:"range"`
	Current  Window `json:"current"`
	Previous Window `json:"previous"`
}

// WindowFor computes the current window [midnight(now - N days), now] in loc
// and the previous window that ends exactly where the current one starts.
func WindowFor(rng Range, now time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.Local
	}

	var start time.Time
	if days := rng.Days(); days > 0 {
		start = StartOfDay(now.In(loc).AddDate(0, 0, -days))
	} else {
		start = time.Unix(0, 0).In(loc)
	}

	length := now.Sub(start)
	return Period{
		Range:    rng,
		Current:  Window{Start: start, End: now, IncludeEnd: true},
		Previous: Window{Start: start.Add(-length), End: start},
	}
}

// StartOfDay is local midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
