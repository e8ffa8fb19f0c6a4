package strategies

import (
	"context"
	"fmt"

	"github.com/tradeforge/simledger/backtest"
	"github.com/tradeforge/simledger/indicators"
	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/market"
)

// SMACross buys when the fast SMA crosses above the slow SMA and exits the
// whole position when it crosses back below. The averages are recomputed
// from the supplied history each bar, so the only carried state is the
// previous relation of the two averages.
type SMACross struct {
	fast  int
	slow  int
	ratio float64

	prevDiff float64
	hasPrev  bool
}

func NewSMACross(fast, slow int, ratio float64) *SMACross {
	if fast <= 0 {
		fast = 5
	}
	if slow <= fast {
		slow = fast * 4
	}
	if ratio <= 0 || ratio > 1 {
		ratio = 0.95
	}
	return &SMACross{fast: fast, slow: slow, ratio: ratio}
}

func (s *SMACross) Name() string {
	return fmt.Sprintf("sma-cross(%d,%d)", s.fast, s.slow)
}

func (s *SMACross) Reset() {
	s.prevDiff = 0
	s.hasPrev = false
}

func (s *SMACross) GenerateSignal(ctx context.Context, symbol string, history market.Bars, snap ledger.SnapshotView) (backtest.Signal, error) {
	closes := history.Closes()
	if len(closes) < s.slow {
		return backtest.Hold("warming up"), nil
	}

	fast, err := indicators.SMA(closes, s.fast)
	if err != nil {
		return backtest.Signal{}, err
	}
	slow, err := indicators.SMA(closes, s.slow)
	if err != nil {
		return backtest.Signal{}, err
	}

	diff := fast - slow
	defer func() {
		s.prevDiff = diff
		s.hasPrev = true
	}()

	if !s.hasPrev {
		return backtest.Hold("first reading"), nil
	}

	crossedUp := s.prevDiff <= 0 && diff > 0
	crossedDown := s.prevDiff >= 0 && diff < 0

	switch {
	case crossedUp && !snap.HasPosition(symbol):
		return backtest.Signal{
			Action:      backtest.ActionBuy,
			TargetRatio: s.ratio,
			Reason:      fmt.Sprintf("fast SMA %.4f crossed above slow %.4f", fast, slow),
		}, nil

	case crossedDown && snap.HasPosition(symbol):
		return backtest.Signal{
			Action:      backtest.ActionSell,
			TargetRatio: 1.0,
			Reason:      fmt.Sprintf("fast SMA %.4f crossed below slow %.4f", fast, slow),
		}, nil
	}

	return backtest.Hold("no cross"), nil
}

func (s *SMACross) OnTrade(rec ledger.TradeRecord) {}
