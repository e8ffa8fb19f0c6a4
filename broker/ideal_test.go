package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradeforge/simledger/ledger"
)

func TestIdealFillsWithSlippageAndCommissionFloor(t *testing.T) {
	cfg := Config{
		CommissionRate: 0.0003,
		MinCommission:  5,
		SlippageRate:   0.001,
		LotSize:        100,
	}
	pf, err := ledger.NewPortfolio(100000)
	require.NoError(t, err)
	b := NewIdeal(cfg, pf)

	at := time.Date(2024, 3, 4, 3, 0, 0, 0, time.UTC) // outside any session; ideal does not care

	o, err := ledger.NewOrder("600519", ledger.Buy, 100, ledger.Market, 0, at)
	require.NoError(t, err)
	rec, err := b.Submit(o, Quote{Time: at, Price: 10.00})
	require.NoError(t, err)

	require.Equal(t, ledger.Filled, o.Status)
	require.InDelta(t, 10.01, rec.Price, 1e-9)
	require.Equal(t, 5.0, rec.Commission) // floor beats 100*10.01*0.0003
	require.Zero(t, rec.Tax)              // the idealized policy levies no tax

	sell, err := ledger.NewOrder("600519", ledger.Sell, 100, ledger.Market, 0, at)
	require.NoError(t, err)
	rec2, err := b.Submit(sell, Quote{Time: at, Price: 12.00})
	require.NoError(t, err)
	require.InDelta(t, 12.00*0.999, rec2.Price, 1e-9)
	require.Zero(t, rec2.Tax)
	require.InDelta(t, 100*(rec2.Price-10.01), rec2.RealizedPL, 1e-9)
}

func TestIdealIgnoresSettlementAndBands(t *testing.T) {
	cfg := Config{MinCommission: 5, LotSize: 100}
	pf, err := ledger.NewPortfolio(100000)
	require.NoError(t, err)
	b := NewIdeal(cfg, pf)

	at := time.Date(2024, 3, 4, 14, 45, 0, 0, time.UTC)

	buy, err := ledger.NewOrder("600519", ledger.Buy, 1000, ledger.Market, 0, at)
	require.NoError(t, err)
	_, err = b.Submit(buy, Quote{Time: at, Price: 10.00, PrevClose: 10.00})
	require.NoError(t, err)

	// Same-day sell near the would-be limit-down: fills anyway.
	sell, err := ledger.NewOrder("600519", ledger.Sell, 1000, ledger.Market, 0, at)
	require.NoError(t, err)
	rec, err := b.Submit(sell, Quote{Time: at, Price: 9.05, PrevClose: 10.00})
	require.NoError(t, err)
	require.Equal(t, ledger.Filled, rec.Status)
}

func TestIdealLimitOrderUsesLimitPrice(t *testing.T) {
	cfg := Config{MinCommission: 5}
	pf, err := ledger.NewPortfolio(100000)
	require.NoError(t, err)
	b := NewIdeal(cfg, pf)

	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	o, err := ledger.NewOrder("600519", ledger.Buy, 100, ledger.Limit, 9.80, at)
	require.NoError(t, err)
	rec, err := b.Submit(o, Quote{Time: at, Price: 10.00})
	require.NoError(t, err)
	require.InDelta(t, 9.80, rec.Price, 1e-9)
}

func TestIdealRejectsRecoverably(t *testing.T) {
	cfg := Config{MinCommission: 5}
	pf, err := ledger.NewPortfolio(100)
	require.NoError(t, err)
	b := NewIdeal(cfg, pf)

	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	o, err := ledger.NewOrder("600519", ledger.Buy, 1000, ledger.Market, 0, at)
	require.NoError(t, err)

	rec, err := b.Submit(o, Quote{Time: at, Price: 10.00})
	require.NoError(t, err)
	require.Equal(t, ledger.Rejected, rec.Status)
	require.Equal(t, 100.0, pf.Cash())
}
