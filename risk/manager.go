package risk

import "fmt"

// Manager evaluates orders against a Policy. Daily state is keyed by the
// simulated date string, so day boundaries reset implicitly when the key
// changes; there is no explicit reset call. A Manager belongs to exactly
// one run.
type Manager struct {
	policy      Policy
	tradesByDay map[string]int
	pnlByDay    map[string]float64
	peakEquity  float64
}

func NewManager(policy Policy) *Manager {
	return &Manager{
		policy:      policy,
		tradesByDay: make(map[string]int),
		pnlByDay:    make(map[string]float64),
	}
}

// Evaluate runs every enabled check and accumulates violations, in the
// style of a compliance report rather than first-failure-wins.
func (m *Manager) Evaluate(intent Intent, snap Snapshot) Decision {
	d := Decision{Allowed: true}
	p := m.policy

	if snap.TotalEquity <= 0 {
		d.add("NO_EQUITY", "total equity is not positive")
		return d
	}

	if p.MaxOrderPct > 0 && intent.Value > p.MaxOrderPct*snap.TotalEquity {
		d.add("ORDER_TOO_LARGE",
			fmt.Sprintf("order value %.2f exceeds %.0f%% of equity %.2f",
				intent.Value, 100*p.MaxOrderPct, snap.TotalEquity))
	}

	if intent.Buy && p.MaxPositionPct > 0 {
		after := snap.PositionValue + intent.Value
		if after > p.MaxPositionPct*snap.TotalEquity {
			d.add("POSITION_TOO_LARGE",
				fmt.Sprintf("position value %.2f after fill exceeds %.0f%% of equity %.2f",
					after, 100*p.MaxPositionPct, snap.TotalEquity))
		}
	}

	if p.MaxTradesPerDay > 0 && m.tradesByDay[intent.DateKey] >= p.MaxTradesPerDay {
		d.add("DAILY_TRADE_LIMIT",
			fmt.Sprintf("%d trades already executed on %s", m.tradesByDay[intent.DateKey], intent.DateKey))
	}

	if p.MaxDailyLossPct > 0 {
		limit := -p.MaxDailyLossPct * snap.TotalEquity
		if m.pnlByDay[intent.DateKey] <= limit {
			d.add("DAILY_LOSS_LIMIT",
				fmt.Sprintf("day realized %.2f breached limit %.2f", m.pnlByDay[intent.DateKey], limit))
		}
	}

	if p.MaxDrawdownPct > 0 && m.peakEquity > 0 {
		dd := (m.peakEquity - snap.TotalEquity) / m.peakEquity
		if dd >= p.MaxDrawdownPct {
			d.add("MAX_DRAWDOWN",
				fmt.Sprintf("drawdown %.2f%% from peak %.2f breached %.0f%% limit",
					100*dd, m.peakEquity, 100*p.MaxDrawdownPct))
		}
	}

	return d
}

// RecordFill counts an executed trade against the day's limit and folds
// realized PnL into the day's running total.
func (m *Manager) RecordFill(dateKey string, realizedPL float64) {
	m.tradesByDay[dateKey]++
	m.pnlByDay[dateKey] += realizedPL
}

// ObserveEquity tracks the run's equity peak for drawdown checks.
func (m *Manager) ObserveEquity(equity float64) {
	if equity > m.peakEquity {
		m.peakEquity = equity
	}
}
