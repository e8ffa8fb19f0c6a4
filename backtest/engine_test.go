package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradeforge/simledger/broker"
	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/market"
	"github.com/tradeforge/simledger/risk"
)

// scripted trades a fixed plan keyed by bar index: it carries no state
// beyond what Reset clears, so independent runs are interchangeable.
type scripted struct {
	plan  map[int]Signal
	bar   int
	fills []ledger.TradeRecord
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Reset() {
	s.bar = 0
	s.fills = nil
}

func (s *scripted) GenerateSignal(_ context.Context, _ string, _ market.Bars, _ ledger.SnapshotView) (Signal, error) {
	sig, ok := s.plan[s.bar]
	s.bar++
	if !ok {
		return Hold("no plan"), nil
	}
	return sig, nil
}

func (s *scripted) OnTrade(rec ledger.TradeRecord) { s.fills = append(s.fills, rec) }

func testBars(closes ...float64) market.Bars {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	bars := make(market.Bars, 0, len(closes))
	for i, c := range closes {
		bars = append(bars, market.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000000,
		})
	}
	return bars
}

func TestRunValidatesConfig(t *testing.T) {
	bars := testBars(10, 11)
	strat := &scripted{}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing symbol", Config{InitialCapital: 100000}},
		{"non-positive capital", Config{Symbol: "600519"}},
		{"unknown policy", Config{Symbol: "600519", InitialCapital: 100000, Policy: "oracle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, strat).Run(context.Background(), bars)
			require.Error(t, err)
		})
	}

	_, err := New(Config{Symbol: "600519", InitialCapital: 100000}, nil).Run(context.Background(), bars)
	require.Error(t, err)
}

func TestRunRejectsBrokenBarData(t *testing.T) {
	cfg := Config{Symbol: "600519", InitialCapital: 100000}
	strat := &scripted{}

	_, err := New(cfg, strat).Run(context.Background(), nil)
	require.ErrorIs(t, err, ledger.ErrMissingMarketData)

	bad := testBars(10, 11)
	bad[1].Close = 0
	_, err = New(cfg, strat).Run(context.Background(), bad)
	require.ErrorIs(t, err, ledger.ErrMissingMarketData)

	disordered := testBars(10, 11)
	disordered[1].Date = disordered[0].Date
	_, err = New(cfg, strat).Run(context.Background(), disordered)
	require.ErrorIs(t, err, ledger.ErrMissingMarketData)
}

func TestRunBuyThenSellThroughExchange(t *testing.T) {
	bars := testBars(10, 11, 11)
	strat := &scripted{plan: map[int]Signal{
		0: {Action: ActionBuy, Quantity: 1000, Reason: "enter"},
		1: {Action: ActionSell, TargetRatio: 1, Reason: "exit"},
	}}
	cfg := Config{
		Symbol:         "600519",
		InitialCapital: 100000,
		Broker: broker.Config{
			CommissionRate: 0.0003,
			MinCommission:  5,
			StampTaxRate:   0.001,
			LotSize:        100,
			BandTolerance:  0.01,
		},
	}

	rep, err := New(cfg, strat).Run(context.Background(), bars)
	require.NoError(t, err)

	require.Len(t, rep.Trades, 2)
	buy, sell := rep.Trades[0], rep.Trades[1]

	require.Equal(t, ledger.Buy, buy.Side)
	require.InDelta(t, 5, buy.Commission, 1e-9)

	require.Equal(t, ledger.Sell, sell.Side)
	require.InDelta(t, 11, sell.Tax, 1e-9)
	require.InDelta(t, 1000, sell.RealizedPL, 1e-9)

	// 100000 - 10005 + (11000 - 5 - 11) = 100979, flat after the exit.
	require.InDelta(t, 100979, rep.Summary.Cash, 1e-9)
	require.Empty(t, rep.Positions)
	require.Len(t, rep.Equity, len(bars))
	require.InDelta(t, 99995, rep.Equity[0].TotalEquity, 1e-9)
	require.InDelta(t, 100979, rep.Equity[1].TotalEquity, 1e-9)
	require.InDelta(t, 100979, rep.Equity[2].TotalEquity, 1e-9)

	require.Equal(t, "ORD-000001", rep.Orders[0].ID)
	require.Equal(t, "ORD-000002", rep.Orders[1].ID)
	require.Len(t, strat.fills, 2)
}

func TestRunRatioSizingFloorsToLot(t *testing.T) {
	bars := testBars(10, 10)
	strat := &scripted{plan: map[int]Signal{
		0: {Action: ActionBuy, TargetRatio: 0.95, Reason: "enter"},
	}}
	cfg := Config{Symbol: "600519", InitialCapital: 10990, Policy: PolicyIdeal}

	rep, err := New(cfg, strat).Run(context.Background(), bars)
	require.NoError(t, err)

	// 10990 * 0.95 / 10 = 1044.05 shares, floored to 1000 by the lot size.
	require.Len(t, rep.Trades, 1)
	require.Equal(t, int64(1000), rep.Trades[0].Quantity)
}

func TestRunEquitySnapshotOnEveryBar(t *testing.T) {
	bars := testBars(10, 10.5, 9.8, 10.2)
	strat := &scripted{}
	cfg := Config{Symbol: "600519", InitialCapital: 100000}

	rep, err := New(cfg, strat).Run(context.Background(), bars)
	require.NoError(t, err)

	require.Len(t, rep.Equity, len(bars))
	for i, eq := range rep.Equity {
		require.True(t, market.SameDay(eq.Time, bars[i].Date))
		require.InDelta(t, 100000, eq.TotalEquity, 1e-9) // never traded
	}
	require.Zero(t, rep.Metrics.TotalTrades)
}

func TestRunIsDeterministic(t *testing.T) {
	bars := testBars(10, 10.4, 10.1, 11, 10.8, 11.2)
	cfg := Config{
		Symbol:         "600519",
		InitialCapital: 100000,
		Broker: broker.Config{
			CommissionRate: 0.0003,
			MinCommission:  5,
			StampTaxRate:   0.001,
			SlippageRate:   0.001,
			LotSize:        100,
			BandTolerance:  0.01,
		},
	}
	plan := map[int]Signal{
		0: {Action: ActionBuy, TargetRatio: 0.5},
		2: {Action: ActionBuy, TargetRatio: 0.5},
		4: {Action: ActionSell, TargetRatio: 1},
	}

	first, err := New(cfg, &scripted{plan: plan}).Run(context.Background(), bars)
	require.NoError(t, err)
	second, err := New(cfg, &scripted{plan: plan}).Run(context.Background(), bars)
	require.NoError(t, err)

	require.Equal(t, first.Equity, second.Equity)
	require.Equal(t, first.Trades, second.Trades)
	require.Equal(t, first.Orders, second.Orders)
	require.Equal(t, first.Metrics, second.Metrics)
}

func TestRunRiskGateRejectsOversizedOrder(t *testing.T) {
	bars := testBars(10, 10)
	strat := &scripted{plan: map[int]Signal{
		0: {Action: ActionBuy, Quantity: 5000, Reason: "oversized"},
	}}
	cfg := Config{
		Symbol:         "600519",
		InitialCapital: 100000,
		Policy:         PolicyIdeal,
		Risk:           &risk.Policy{MaxOrderPct: 0.10},
	}

	rep, err := New(cfg, strat).Run(context.Background(), bars)
	require.NoError(t, err)

	require.Empty(t, rep.Trades) // fills only; the rejection never moved cash
	require.Len(t, rep.Orders, 1)
	require.Equal(t, ledger.Rejected, rep.Orders[0].Status)
	require.Contains(t, rep.Orders[0].Reason, "ORDER_TOO_LARGE")
	require.InDelta(t, 100000, rep.Summary.Cash, 1e-9)
	require.Empty(t, strat.fills)
}

func TestRunSellableNextDayThroughEngine(t *testing.T) {
	// The exit fires one bar after the entry, so settlement lets it through.
	cfg := Config{
		Symbol:         "600519",
		InitialCapital: 100000,
		Broker:         broker.Config{LotSize: 100, BandTolerance: 0.01},
	}
	plan := map[int]Signal{
		0: {Action: ActionBuy, Quantity: 100},
		1: {Action: ActionSell, TargetRatio: 1},
	}

	rep, err := New(cfg, &scripted{plan: plan}).Run(context.Background(), testBars(10, 10))
	require.NoError(t, err)
	require.Len(t, rep.Orders, 2)
	require.Equal(t, ledger.Filled, rep.Orders[0].Status)
	require.Equal(t, ledger.Filled, rep.Orders[1].Status)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Symbol: "600519", InitialCapital: 100000}, &scripted{}).
		Run(ctx, testBars(10, 11))
	require.ErrorIs(t, err, context.Canceled)
}
