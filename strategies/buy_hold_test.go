package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradeforge/simledger/backtest"
	"github.com/tradeforge/simledger/ledger"
)

func TestBuyHoldEntersOnceThenHolds(t *testing.T) {
	s := NewBuyHold(0.8)
	bars := barsFromCloses(10, 11, 12)

	sig, err := s.GenerateSignal(context.Background(), "600519", bars.UpTo(0), flatView(100000))
	require.NoError(t, err)
	require.Equal(t, backtest.ActionBuy, sig.Action)
	require.InDelta(t, 0.8, sig.TargetRatio, 1e-9)

	s.OnTrade(ledger.TradeRecord{Side: ledger.Buy, Status: ledger.Filled})

	sig, err = s.GenerateSignal(context.Background(), "600519", bars.UpTo(1), holdingView("600519", 8000, 11))
	require.NoError(t, err)
	require.Equal(t, backtest.ActionHold, sig.Action)
}

func TestBuyHoldRetriesAfterRejectedEntry(t *testing.T) {
	s := NewBuyHold(0.8)
	bars := barsFromCloses(10, 11)

	sig, err := s.GenerateSignal(context.Background(), "600519", bars.UpTo(0), flatView(100000))
	require.NoError(t, err)
	require.Equal(t, backtest.ActionBuy, sig.Action)

	// A rejection leaves the strategy unentered, so it tries again.
	s.OnTrade(ledger.TradeRecord{Side: ledger.Buy, Status: ledger.Rejected})

	sig, err = s.GenerateSignal(context.Background(), "600519", bars.UpTo(1), flatView(100000))
	require.NoError(t, err)
	require.Equal(t, backtest.ActionBuy, sig.Action)
}

func TestBuyHoldReset(t *testing.T) {
	s := NewBuyHold(0.8)
	s.OnTrade(ledger.TradeRecord{Side: ledger.Buy, Status: ledger.Filled})
	require.True(t, s.entered)

	s.Reset()
	require.False(t, s.entered)
}

func TestBuyHoldRatioDefault(t *testing.T) {
	require.InDelta(t, 0.95, NewBuyHold(0).ratio, 1e-9)
	require.InDelta(t, 0.95, NewBuyHold(1.5).ratio, 1e-9)
}

func TestByName(t *testing.T) {
	p := Params{FastPeriod: 5, SlowPeriod: 20, Ratio: 0.9}

	for _, name := range []string{"noop", "none", "hold", "buy-hold", "buyhold", "sma-cross", "SMACross"} {
		s, err := ByName(name, p)
		require.NoError(t, err, name)
		require.NotNil(t, s, name)
	}

	_, err := ByName("momentum", p)
	require.Error(t, err)
}

func TestNoopNeverTrades(t *testing.T) {
	s := Noop{}
	bars := barsFromCloses(10, 11, 12)

	for i := range bars {
		sig, err := s.GenerateSignal(context.Background(), "600519", bars.UpTo(i), flatView(100000))
		require.NoError(t, err)
		require.Equal(t, backtest.ActionHold, sig.Action)
	}
}
