// Package indicators provides the small set of technical indicators the
// bundled strategies use. All of them are deterministic over their inputs.
package indicators

import "fmt"

// SMA computes the Simple Moving Average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period, len(values))
	}

	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// EMA computes the Exponential Moving Average over the full series,
// seeded with the SMA of the first period values.
func EMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period, len(values))
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	ema := seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
	}
	return ema, nil
}

// StreamingEMA is an incrementally updated EMA for callers that feed one
// close at a time.
type StreamingEMA struct {
	period int
	seen   int
	seed   float64
	value  float64
}

func NewStreamingEMA(period int) *StreamingEMA {
	return &StreamingEMA{period: period}
}

func (e *StreamingEMA) Reset() {
	e.seen = 0
	e.seed = 0
	e.value = 0
}

// Update consumes the next close.
func (e *StreamingEMA) Update(v float64) {
	e.seen++
	if e.seen <= e.period {
		e.seed += v
		e.value = e.seed / float64(e.seen)
		return
	}
	k := 2.0 / float64(e.period+1)
	e.value = (v-e.value)*k + e.value
}

// Ready reports whether the warmup period has completed.
func (e *StreamingEMA) Ready() bool {
	return e.seen >= e.period
}

func (e *StreamingEMA) Value() float64 {
	return e.value
}
