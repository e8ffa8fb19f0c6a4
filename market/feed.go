package market

// Feed yields bars one at a time, in date order. Implementations must be
// deterministic and return ok=false with a nil error at EOF.
type Feed interface {
	Next() (b Bar, ok bool, err error)
	Close() error
}

// ReadAll drains a feed into a validated Bars sequence and closes it.
func ReadAll(f Feed) (Bars, error) {
	defer f.Close()

	var bars Bars
	for {
		b, ok, err := f.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		bars = append(bars, b)
	}

	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}
