package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func bar(d int, close float64) Bar {
	return Bar{Date: day(d), Open: close, High: close, Low: close, Close: close, Volume: 1000}
}

func TestBarValid(t *testing.T) {
	require.True(t, bar(4, 10).Valid())
	require.False(t, Bar{}.Valid())
	require.False(t, Bar{Date: day(4), Open: 10, High: 10, Low: 10}.Valid())

	b := bar(4, 10)
	b.Low = -1
	require.False(t, b.Valid())
}

func TestBarsValidate(t *testing.T) {
	good := Bars{bar(4, 10), bar(5, 11), bar(6, 10.5)}
	require.NoError(t, good.Validate())

	dup := Bars{bar(4, 10), bar(4, 11)}
	require.Error(t, dup.Validate())

	backwards := Bars{bar(5, 10), bar(4, 11)}
	require.Error(t, backwards.Validate())

	broken := Bars{bar(4, 10), {Date: day(5)}}
	require.Error(t, broken.Validate())

	require.NoError(t, Bars(nil).Validate())
}

func TestBarsUpTo(t *testing.T) {
	bs := Bars{bar(4, 10), bar(5, 11), bar(6, 12)}

	require.Len(t, bs.UpTo(0), 1)
	require.Len(t, bs.UpTo(1), 2)
	require.Len(t, bs.UpTo(99), 3)
	require.Nil(t, bs.UpTo(-1))
	require.Equal(t, 11.0, bs.UpTo(1).Last().Close)
}

func TestBarsCloses(t *testing.T) {
	bs := Bars{bar(4, 10), bar(5, 11)}
	require.Equal(t, []float64{10, 11}, bs.Closes())
	require.Equal(t, Bar{}, Bars(nil).Last())
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC)
	next := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.True(t, SameDay(morning, evening))
	require.False(t, SameDay(evening, next))
}

func clock(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func TestWindowContains(t *testing.T) {
	w := Window{Open: 9*60 + 30, Close: 11*60 + 30}

	require.True(t, w.Contains(clock(9, 30))) // boundaries are tradable
	require.True(t, w.Contains(clock(11, 30)))
	require.True(t, w.Contains(clock(10, 0)))
	require.False(t, w.Contains(clock(9, 29)))
	require.False(t, w.Contains(clock(11, 31)))
}

func TestDefaultSession(t *testing.T) {
	s := DefaultSession()

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"pre-open", clock(9, 0), false},
		{"morning open", clock(9, 30), true},
		{"morning close", clock(11, 30), true},
		{"lunch break", clock(12, 0), false},
		{"afternoon open", clock(13, 0), true},
		{"afternoon close", clock(15, 0), true},
		{"after hours", clock(15, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Contains(tt.at))
		})
	}
}
