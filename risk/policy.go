// Package risk is the optional pre-trade gate. It sits between the
// backtest loop and the execution policy and is independent of which
// policy fills the order.
package risk

// Policy holds the pre-trade limits. Zero values disable a limit.
type Policy struct {
	// Exposure limits, as fractions of total equity.
	MaxPositionPct float64 // largest single position after the fill
	MaxOrderPct    float64 // largest single order

	// Trade-frequency limit per simulated day.
	MaxTradesPerDay int

	// Circuit breakers.
	MaxDailyLossPct float64 // realized loss for the day
	MaxDrawdownPct  float64 // equity decline from the run's peak
}

// DefaultPolicy is a conservative starting point for cash accounts.
func DefaultPolicy() Policy {
	return Policy{
		MaxPositionPct:  0.95,
		MaxOrderPct:     0.50,
		MaxTradesPerDay: 10,
		MaxDailyLossPct: 0.05,
		MaxDrawdownPct:  0.25,
	}
}

// Intent is the order under evaluation, reduced to what the gate needs.
type Intent struct {
	Symbol  string
	Buy     bool
	Value   float64 // quantity * price
	DateKey string  // simulated date, e.g. "2024-03-08"
}

// Snapshot is the account state the gate evaluates against.
type Snapshot struct {
	TotalEquity   float64
	PositionValue float64 // current value of the symbol's position
}

// Violation is one failed check.
type Violation struct {
	Code string
	Msg  string
}

// Decision accumulates the outcome of all checks.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Reason flattens the violations into a single rejection string.
func (d *Decision) Reason() string {
	if len(d.Violations) == 0 {
		return ""
	}
	s := d.Violations[0].Code + ": " + d.Violations[0].Msg
	for _, v := range d.Violations[1:] {
		s += "; " + v.Code + ": " + v.Msg
	}
	return s
}
