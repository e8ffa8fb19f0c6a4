package backtest

import (
	"context"

	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/market"
)

// Action is what a strategy wants done this bar.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is the outcome of one strategy decision. Quantity sizes the order
// when set; otherwise TargetRatio allocates a fraction of available cash
// (buys) or of the held quantity (sells).
type Signal struct {
	Action      Action
	TargetRatio float64
	Quantity    int64
	Reason      string
}

// Hold is the no-op signal.
func Hold(reason string) Signal {
	return Signal{Action: ActionHold, Reason: reason}
}

// Strategy is the capability the loop invokes once per bar. History is
// forward-ordered and ends at the current simulated bar, so a strategy
// cannot look ahead by construction. The snapshot is read-only.
type Strategy interface {
	Name() string

	// Reset reinitializes internal state between independent runs.
	Reset()

	GenerateSignal(ctx context.Context, symbol string, history market.Bars, snap ledger.SnapshotView) (Signal, error)

	// OnTrade notifies the strategy after one of its orders fills.
	OnTrade(rec ledger.TradeRecord)
}
