package daywindow

import "time"

// Window is the half-open interval [Start, End) covering one local calendar
// day. Every daily aggregation (queue listing, load counts, token numbering)
// is scoped to a Window.
type Window struct {
	Start time.Time
	End   time.Time
}

// At returns the window of the day containing t in the given location.
func At(t time.Time, loc *time.Location) Window {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}
}

// Today returns the current day's window in the given location.
func Today(loc *time.Location) Window {
	return At(time.Now(), loc)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayKey returns the window's calendar date as YYYY-MM-DD. Used both as the
// Redis sequence key suffix and as the token_day column value.
func (w Window) DayKey() string {
	return w.Start.Format("2006-01-02")
}
