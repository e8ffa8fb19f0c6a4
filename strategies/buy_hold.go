package strategies

import (
	"context"

	"github.com/tradeforge/simledger/backtest"
	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/market"
)

// BuyHold commits a fixed cash fraction on the first bar it sees without a
// position, then holds for the remainder of the run.
type BuyHold struct {
	ratio   float64
	entered bool
}

func NewBuyHold(ratio float64) *BuyHold {
	if ratio <= 0 || ratio > 1 {
		ratio = 0.95
	}
	return &BuyHold{ratio: ratio}
}

func (s *BuyHold) Name() string { return "buy-hold" }

func (s *BuyHold) Reset() {
	s.entered = false
}

func (s *BuyHold) GenerateSignal(ctx context.Context, symbol string, history market.Bars, snap ledger.SnapshotView) (backtest.Signal, error) {
	if s.entered || snap.HasPosition(symbol) {
		return backtest.Hold("already holding"), nil
	}
	return backtest.Signal{
		Action:      backtest.ActionBuy,
		TargetRatio: s.ratio,
		Reason:      "initial entry",
	}, nil
}

func (s *BuyHold) OnTrade(rec ledger.TradeRecord) {
	if rec.Side == ledger.Buy && rec.Status == ledger.Filled {
		s.entered = true
	}
}
