package ledger

import "time"

// Position is the per-symbol holding entry. It is created on the first buy
// fill, deleted when quantity returns to zero, and mutated only by the
// Portfolio on fills and mark-to-market updates.
type Position struct {
	Symbol      string
	Quantity    int64
	AvgCost     float64
	MarkPrice   float64
	PrevClose   float64 // previous reference price, set by mark-to-market
	PurchasedAt time.Time
}

// MarketValue is quantity times the current mark price.
func (p *Position) MarketValue() float64 {
	return float64(p.Quantity) * p.MarkPrice
}

// CostBasis is quantity times average cost, exactly.
func (p *Position) CostBasis() float64 {
	return float64(p.Quantity) * p.AvgCost
}

// UnrealizedPL is the mark-to-market gain over cost basis.
func (p *Position) UnrealizedPL() float64 {
	return float64(p.Quantity) * (p.MarkPrice - p.AvgCost)
}

// SellableOn reports whether the holding may be sold on the given simulated
// date: the purchase date must be strictly before it (T+1 settlement).
func (p *Position) SellableOn(date time.Time) bool {
	py, pm, pd := p.PurchasedAt.Date()
	dy, dm, dd := date.In(p.PurchasedAt.Location()).Date()
	if py != dy {
		return py < dy
	}
	if pm != dm {
		return pm < dm
	}
	return pd < dd
}

// PositionSnapshot is the read-only copy exposed to strategies and reports.
type PositionSnapshot struct {
	Symbol      string
	Quantity    int64
	AvgCost     float64
	MarkPrice   float64
	PurchasedAt time.Time
}

func (p *Position) snapshot() PositionSnapshot {
	return PositionSnapshot{
		Symbol:      p.Symbol,
		Quantity:    p.Quantity,
		AvgCost:     p.AvgCost,
		MarkPrice:   p.MarkPrice,
		PurchasedAt: p.PurchasedAt,
	}
}
