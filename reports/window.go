package reports

import "time"

// Named date ranges accepted in the dateRange query parameter.
const (
	RangeThisWeek     = "This Week"
	RangeLastWeek     = "Last Week"
	RangeLast3Months  = "Last 3 Months"
	RangeLast6Months  = "Last 6 Months"
	RangeLast12Months = "Last 12 Months"
)

const isoDate = "2006-01-02"

// Window is an inclusive time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ResolveWindow maps a named range to a window ending at the last
// millisecond of now's day. Unknown or empty tokens cover everything from
// the Unix epoch. now is never mutated.
func ResolveWindow(token string, now time.Time) Window {
	w := Window{
		Start: time.Unix(0, 0).In(now.Location()),
		End:   endOfDay(now),
	}

	switch token {
	case RangeThisWeek:
		w.Start = now.AddDate(0, 0, -7)
	case RangeLastWeek:
		w.Start = now.AddDate(0, 0, -14)
	case RangeLast3Months:
		w.Start = now.AddDate(0, -3, 0)
	case RangeLast6Months:
		w.Start = now.AddDate(0, -6, 0)
	case RangeLast12Months:
		w.Start = now.AddDate(0, -12, 0)
	}
	return w
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
