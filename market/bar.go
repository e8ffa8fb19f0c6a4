// Package market holds the historical price inputs the simulation consumes.
// Trading-day determination is an external fact: a Bar exists for a date
// because the data collaborator said that date traded.
package market

import (
	"fmt"
	"time"
)

// Bar is one daily OHLCV row.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether the bar carries usable prices for mark-to-market.
func (b Bar) Valid() bool {
	return !b.Date.IsZero() && b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0
}

// Bars is a chronologically ordered daily bar sequence for one symbol.
type Bars []Bar

// Validate checks that the sequence is strictly ascending by date and that
// every bar carries positive prices.
func (bs Bars) Validate() error {
	for i, b := range bs {
		if !b.Valid() {
			return fmt.Errorf("bar %d (%s): invalid prices", i, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !bs[i-1].Date.Before(b.Date) {
			return fmt.Errorf("bar %d (%s): dates not strictly ascending", i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// UpTo returns the bars up to and including index i. The slice shares the
// backing array; callers treat it as read-only history.
func (bs Bars) UpTo(i int) Bars {
	if i < 0 {
		return nil
	}
	if i >= len(bs) {
		i = len(bs) - 1
	}
	return bs[:i+1]
}

// Closes extracts the close prices in order.
func (bs Bars) Closes() []float64 {
	out := make([]float64, len(bs))
	for i, b := range bs {
		out[i] = b.Close
	}
	return out
}

// Last returns the final bar, or a zero Bar for an empty sequence.
func (bs Bars) Last() Bar {
	if len(bs) == 0 {
		return Bar{}
	}
	return bs[len(bs)-1]
}

// SameDay reports whether a and b fall on the same calendar day.
// Both times are compared in a's location; the simulation never mixes zones.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
