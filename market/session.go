package market

import "time"

// Window is a single intraday trading window, inclusive on both ends.
// Bounds are minutes from midnight so a Window is independent of date.
type Window struct {
	Open  int // minutes from midnight, e.g. 9*60+30
	Close int
}

// Contains reports whether the time-of-day of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	return m >= w.Open && m <= w.Close
}

// Session is the set of daily trading windows for an exchange.
// The usual continuous-auction day has a morning and an afternoon window.
type Session struct {
	Windows []Window
}

// DefaultSession covers 09:30-11:30 and 13:00-15:00 exchange local time.
func DefaultSession() Session {
	return Session{Windows: []Window{
		{Open: 9*60 + 30, Close: 11*60 + 30},
		{Open: 13 * 60, Close: 15 * 60},
	}}
}

// Contains reports whether t falls inside any trading window.
func (s Session) Contains(t time.Time) bool {
	for _, w := range s.Windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
