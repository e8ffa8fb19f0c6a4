package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, side Side, qty int64) *Order {
	t.Helper()
	o, err := NewOrder("600519", side, qty, Market, 0, time.Date(2024, 3, 4, 14, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	o.ID = "ORD-000001"
	return o
}

func TestNewOrderValidation(t *testing.T) {
	now := time.Date(2024, 3, 4, 14, 45, 0, 0, time.UTC)

	tests := []struct {
		name       string
		symbol     string
		side       Side
		qty        int64
		kind       Kind
		limitPrice float64
		wantField  string
	}{
		{"empty symbol", "", Buy, 100, Market, 0, "symbol"},
		{"bad side", "600519", Side("SHORT"), 100, Market, 0, "side"},
		{"zero quantity", "600519", Buy, 0, Market, 0, "quantity"},
		{"negative quantity", "600519", Sell, -100, Market, 0, "quantity"},
		{"limit without price", "600519", Buy, 100, Limit, 0, "limit_price"},
		{"market with price", "600519", Buy, 100, Market, 10.5, "limit_price"},
		{"bad kind", "600519", Buy, 100, Kind("STOP"), 0, "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.symbol, tt.side, tt.qty, tt.kind, tt.limitPrice, now)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestOrderLimitRequiresPrice(t *testing.T) {
	now := time.Date(2024, 3, 4, 14, 45, 0, 0, time.UTC)
	o, err := NewOrder("600519", Buy, 100, Limit, 10.50, now)
	require.NoError(t, err)
	require.Equal(t, Pending, o.Status)
	require.Equal(t, 10.50, o.LimitPrice)
}

func TestOrderFillTransitions(t *testing.T) {
	o := newTestOrder(t, Buy, 200)
	at := o.CreatedAt

	require.NoError(t, o.Fill(100, 10.0, 5, 0, at))
	require.Equal(t, PartiallyFilled, o.Status)
	require.EqualValues(t, 100, o.FilledQuantity)

	require.NoError(t, o.Fill(100, 10.1, 5, 0, at))
	require.Equal(t, Filled, o.Status)
	require.EqualValues(t, 200, o.FilledQuantity)
	require.Equal(t, 10.0, o.Commission)
}

func TestOrderFillNeverExceedsQuantity(t *testing.T) {
	o := newTestOrder(t, Buy, 100)
	require.Error(t, o.Fill(200, 10.0, 5, 0, o.CreatedAt))
	require.Equal(t, Pending, o.Status)
}

func TestOrderTerminalStatesAreImmutable(t *testing.T) {
	at := time.Date(2024, 3, 4, 14, 45, 0, 0, time.UTC)

	terminal := []func(t *testing.T) *Order{
		func(t *testing.T) *Order {
			o := newTestOrder(t, Buy, 100)
			require.NoError(t, o.Fill(100, 10, 5, 0, at))
			return o
		},
		func(t *testing.T) *Order {
			o := newTestOrder(t, Buy, 100)
			require.NoError(t, o.Reject("test rejection"))
			return o
		},
		func(t *testing.T) *Order {
			o := newTestOrder(t, Buy, 100)
			require.NoError(t, o.Cancel())
			return o
		},
	}

	for _, mk := range terminal {
		o := mk(t)
		require.ErrorIs(t, o.Fill(100, 10, 5, 0, at), ErrOrderFinal)
		require.ErrorIs(t, o.Reject("again"), ErrOrderFinal)
		require.ErrorIs(t, o.Cancel(), ErrOrderFinal)
	}
}

func TestOrderCancelFromPartialFill(t *testing.T) {
	o := newTestOrder(t, Sell, 300)
	require.NoError(t, o.Fill(100, 11, 5, 3.3, o.CreatedAt))
	require.NoError(t, o.Cancel())
	require.Equal(t, Cancelled, o.Status)
	// The partial fill stays on the record.
	require.EqualValues(t, 100, o.FilledQuantity)
}

func TestRecoverableClassification(t *testing.T) {
	require.True(t, Recoverable(ErrInsufficientFunds))
	require.True(t, Recoverable(ErrInsufficientShares))
	require.True(t, Recoverable(ErrSettlementRestricted))
	require.True(t, Recoverable(ErrPriceLimit))
	require.True(t, Recoverable(ErrOutsideTradingHours))
	require.True(t, Recoverable(&ValidationError{Field: "quantity", Msg: "x"}))

	require.False(t, Recoverable(ErrLedgerCorrupt))
	require.False(t, Recoverable(ErrMissingMarketData))
	require.False(t, Recoverable(ErrOrderFinal))
	require.False(t, Recoverable(errors.New("anything else")))
}
