package backtest

import (
	"time"

	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/stats"
)

// Report is the full outcome of one run. It is a plain value: how it gets
// serialized, stored or transported is someone else's concern.
type Report struct {
	RunID    string
	Strategy string
	Symbol   string

	StartDate time.Time
	EndDate   time.Time

	Metrics stats.Result

	// Equity is the per-bar snapshot sequence, one entry per replayed bar.
	Equity []ledger.EquitySnapshot

	// Trades are the fills, in execution order.
	Trades []ledger.TradeRecord

	// Orders are immutable copies of every resolved order, rejections
	// included, in submission order.
	Orders []ledger.Order

	// Positions are the holdings left open at the end of the run.
	Positions []ledger.PositionSnapshot

	Summary ledger.Summary
}
