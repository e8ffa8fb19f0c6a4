package strategies

import (
	"context"

	"github.com/tradeforge/simledger/backtest"
	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/market"
)

// Noop never trades. It exists to exercise the loop and as a baseline.
type Noop struct{}

func (Noop) Name() string { return "noop" }
func (Noop) Reset()       {}

func (Noop) GenerateSignal(ctx context.Context, symbol string, history market.Bars, snap ledger.SnapshotView) (backtest.Signal, error) {
	return backtest.Hold("noop"), nil
}

func (Noop) OnTrade(rec ledger.TradeRecord) {}
