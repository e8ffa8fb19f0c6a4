package ledger

import (
	"errors"
	"fmt"
)

// Order-level violations. These are recoverable: the order is rejected and
// the simulation continues.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientShares   = errors.New("insufficient shares")
	ErrSettlementRestricted = errors.New("same-day purchase cannot be sold until the next trading day")
	ErrPriceLimit           = errors.New("price limit restriction")
	ErrOutsideTradingHours  = errors.New("outside trading hours")
)

// Run-level failures. Neither is recoverable within a run.
var (
	// ErrMissingMarketData means the current bar cannot price the portfolio.
	ErrMissingMarketData = errors.New("missing market data")

	// ErrLedgerCorrupt means an accounting invariant broke after a mutation
	// the code believed valid. It is never clamped or corrected.
	ErrLedgerCorrupt = errors.New("ledger invariant violated")
)

// ErrOrderFinal is returned on any transition attempt from a terminal
// order status. It indicates a programming error, not a market condition.
var ErrOrderFinal = errors.New("order already in terminal status")

// ValidationError marks a malformed order request (non-positive quantity,
// off-lot quantity, missing limit price).
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s: %s", e.Field, e.Msg)
}

// Recoverable reports whether err is an order-level violation that the
// simulation loop absorbs by rejecting the order.
func Recoverable(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientShares) ||
		errors.Is(err, ErrSettlementRestricted) ||
		errors.Is(err, ErrPriceLimit) ||
		errors.Is(err, ErrOutsideTradingHours)
}
