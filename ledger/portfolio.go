package ledger

import (
	"fmt"
	"sort"
	"time"
)

// cashTolerance absorbs float rounding on cash arithmetic. Anything more
// negative than this after a fill is an accounting defect, not rounding.
const cashTolerance = 1e-6

// TradeRecord is one resolved order outcome appended to the trade log.
// For fills RealizedPL is meaningful on sells only; opening trades never
// realize profit or loss.
type TradeRecord struct {
	OrderID    string
	Symbol     string
	Side       Side
	Quantity   int64
	Price      float64
	Commission float64
	Tax        float64
	RealizedPL float64
	Time       time.Time
	Status     Status
	Reason     string
	Strategy   string
}

// EquitySnapshot is one point of the equity history.
type EquitySnapshot struct {
	Time        time.Time
	Cash        float64
	MarketValue float64
	TotalEquity float64
	PnL         float64
	PnLPct      float64
}

// Summary is the aggregate state of the portfolio at a point in time.
type Summary struct {
	InitialCapital float64
	Cash           float64
	MarketValue    float64
	TotalEquity    float64
	PnL            float64
	PnLPct         float64
	Positions      int
	Trades         int
}

// SnapshotView is the read-only portfolio view handed to strategies.
type SnapshotView struct {
	Cash        float64
	TotalEquity float64
	Positions   map[string]PositionSnapshot
}

// HasPosition reports whether the symbol is currently held.
func (v SnapshotView) HasPosition(symbol string) bool {
	p, ok := v.Positions[symbol]
	return ok && p.Quantity > 0
}

// Position returns the snapshot for symbol, if held.
func (v SnapshotView) Position(symbol string) (PositionSnapshot, bool) {
	p, ok := v.Positions[symbol]
	return p, ok
}

// Portfolio is the ledger: it owns cash and the position set. Cash changes
// through ExecuteBuy and ExecuteSell and through nothing else. A Portfolio
// has exactly one writer (the execution policy of its run) and is never
// shared between concurrent runs.
type Portfolio struct {
	initialCapital float64
	cash           float64
	positions      map[string]*Position
	trades         []TradeRecord
	equity         []EquitySnapshot
}

func NewPortfolio(initialCapital float64) (*Portfolio, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %v", initialCapital)
	}
	return &Portfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
		positions:      make(map[string]*Position),
	}, nil
}

func (p *Portfolio) InitialCapital() float64 { return p.initialCapital }
func (p *Portfolio) Cash() float64           { return p.cash }

// Position returns the live entry for symbol, or nil. Callers outside the
// ledger must treat it as read-only; mutation stays with the Portfolio.
func (p *Portfolio) Position(symbol string) *Position {
	return p.positions[symbol]
}

// ExecuteBuy atomically debits qty*price+commission and creates or augments
// the position with a cost-basis-weighted average price. On failure nothing
// is written.
func (p *Portfolio) ExecuteBuy(symbol string, qty int64, price, commission float64, at time.Time) error {
	if qty <= 0 {
		return &ValidationError{Field: "quantity", Msg: "must be positive"}
	}
	if price <= 0 {
		return &ValidationError{Field: "price", Msg: "must be positive"}
	}

	cost := float64(qty)*price + commission
	if cost > p.cash+cashTolerance {
		return fmt.Errorf("buy %d %s @ %.4f needs %.2f, cash %.2f: %w",
			qty, symbol, price, cost, p.cash, ErrInsufficientFunds)
	}

	p.cash -= cost

	pos, ok := p.positions[symbol]
	if !ok {
		p.positions[symbol] = &Position{
			Symbol:      symbol,
			Quantity:    qty,
			AvgCost:     price,
			MarkPrice:   price,
			PurchasedAt: at,
		}
	} else {
		total := float64(pos.Quantity)*pos.AvgCost + float64(qty)*price
		pos.Quantity += qty
		pos.AvgCost = total / float64(pos.Quantity)
		pos.MarkPrice = price
		pos.PurchasedAt = at
	}

	return p.checkInvariants()
}

// ExecuteSell atomically credits qty*price-commission-tax, realizes
// qty*(price-avgCost) and reduces or removes the position. On failure
// nothing is written. The realized PnL is returned for callers that track
// per-day loss limits.
func (p *Portfolio) ExecuteSell(symbol string, qty int64, price, commission, tax float64, at time.Time) (float64, error) {
	if qty <= 0 {
		return 0, &ValidationError{Field: "quantity", Msg: "must be positive"}
	}
	if price <= 0 {
		return 0, &ValidationError{Field: "price", Msg: "must be positive"}
	}

	pos, ok := p.positions[symbol]
	if !ok || pos.Quantity == 0 {
		return 0, fmt.Errorf("sell %d %s: no position: %w", qty, symbol, ErrInsufficientShares)
	}
	if qty > pos.Quantity {
		return 0, fmt.Errorf("sell %d %s, held %d: %w", qty, symbol, pos.Quantity, ErrInsufficientShares)
	}

	realized := float64(qty) * (price - pos.AvgCost)
	p.cash += float64(qty)*price - commission - tax

	pos.Quantity -= qty
	pos.MarkPrice = price
	if pos.Quantity == 0 {
		delete(p.positions, symbol)
	}

	return realized, p.checkInvariants()
}

// UpdatePrices marks held positions to market. It never changes cash or
// realized PnL. Symbols without a supplied price keep their last mark.
func (p *Portfolio) UpdatePrices(prices map[string]float64) {
	for sym, px := range prices {
		pos, ok := p.positions[sym]
		if !ok || px <= 0 {
			continue
		}
		pos.PrevClose = pos.MarkPrice
		pos.MarkPrice = px
	}
}

// MarketValue sums position quantity times mark price.
func (p *Portfolio) MarketValue() float64 {
	var total float64
	for _, pos := range p.positions {
		total += pos.MarketValue()
	}
	return total
}

// TotalEquity is cash plus market value, by definition.
func (p *Portfolio) TotalEquity() float64 {
	return p.cash + p.MarketValue()
}

// RecordEquity appends a derived snapshot of the current state.
func (p *Portfolio) RecordEquity(at time.Time) EquitySnapshot {
	eq := p.TotalEquity()
	snap := EquitySnapshot{
		Time:        at,
		Cash:        p.cash,
		MarketValue: p.MarketValue(),
		TotalEquity: eq,
		PnL:         eq - p.initialCapital,
		PnLPct:      (eq - p.initialCapital) / p.initialCapital * 100,
	}
	p.equity = append(p.equity, snap)
	return snap
}

// RecordTrade appends a fill to the trade log. The ledger keeps the log
// append-only; callers never remove or rewrite entries.
func (p *Portfolio) RecordTrade(rec TradeRecord) {
	p.trades = append(p.trades, rec)
}

// Trades returns a copy of the trade log.
func (p *Portfolio) Trades() []TradeRecord {
	out := make([]TradeRecord, len(p.trades))
	copy(out, p.trades)
	return out
}

// EquityHistory returns a copy of the equity snapshot sequence.
func (p *Portfolio) EquityHistory() []EquitySnapshot {
	out := make([]EquitySnapshot, len(p.equity))
	copy(out, p.equity)
	return out
}

// Summary is a pure read of current aggregate state.
func (p *Portfolio) Summary() Summary {
	eq := p.TotalEquity()
	return Summary{
		InitialCapital: p.initialCapital,
		Cash:           p.cash,
		MarketValue:    p.MarketValue(),
		TotalEquity:    eq,
		PnL:            eq - p.initialCapital,
		PnLPct:         (eq - p.initialCapital) / p.initialCapital * 100,
		Positions:      len(p.positions),
		Trades:         len(p.trades),
	}
}

// Snapshot builds the read-only strategy view with copied position entries.
func (p *Portfolio) Snapshot() SnapshotView {
	view := SnapshotView{
		Cash:        p.cash,
		TotalEquity: p.TotalEquity(),
		Positions:   make(map[string]PositionSnapshot, len(p.positions)),
	}
	for sym, pos := range p.positions {
		view.Positions[sym] = pos.snapshot()
	}
	return view
}

// FinalPositions returns position snapshots sorted by symbol, for reports.
func (p *Portfolio) FinalPositions() []PositionSnapshot {
	out := make([]PositionSnapshot, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, pos.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// checkInvariants fails loudly when the books stop balancing. A violation
// here is an accounting defect; it aborts the run rather than being clamped.
func (p *Portfolio) checkInvariants() error {
	if p.cash < -cashTolerance {
		return fmt.Errorf("cash %.6f is negative: %w", p.cash, ErrLedgerCorrupt)
	}
	for sym, pos := range p.positions {
		if pos.Quantity < 0 {
			return fmt.Errorf("position %s quantity %d is negative: %w", sym, pos.Quantity, ErrLedgerCorrupt)
		}
		if pos.Quantity > 0 && pos.AvgCost <= 0 {
			return fmt.Errorf("position %s avg cost %.6f is non-positive: %w", sym, pos.AvgCost, ErrLedgerCorrupt)
		}
	}
	return nil
}
