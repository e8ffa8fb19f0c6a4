// Package broker provides the execution policies that turn submitted orders
// into ledger mutations: an idealized fixed-slippage filler and a
// regulation-aware filler enforcing settlement and price-limit rules.
package broker

import (
	"time"

	"github.com/tradeforge/simledger/ledger"
)

// Quote is the bar-derived market state an order is filled against.
// PrevClose is the true previous trading day's close; zero means the run has
// no prior bar and price-limit bands cannot be computed.
type Quote struct {
	Time      time.Time
	Price     float64
	PrevClose float64
}

// Broker fills or rejects an order against the quote, mutating its ledger
// atomically. Ownership of the order transfers to the broker on submission;
// the order comes back in a terminal or pending state, never half-filled
// ledger-side. A rejected order carries its reason and a nil error when the
// rejection is a recoverable market-rule violation.
type Broker interface {
	Submit(o *ledger.Order, q Quote) (ledger.TradeRecord, error)
}

// Config carries the execution-cost and market-rule parameters shared by
// both policies.
type Config struct {
	CommissionRate float64 // e.g. 0.0003
	MinCommission  float64 // e.g. 5.0
	StampTaxRate   float64 // sell-side only, e.g. 0.001
	SlippageRate   float64 // e.g. 0.0005
	LotSize        int64   // minimum tradable unit, e.g. 100
	BandTolerance  float64 // closeness to the band that triggers policy, e.g. 0.01
}

// DefaultConfig mirrors common brokerage terms for a cash equity account.
func DefaultConfig() Config {
	return Config{
		CommissionRate: 0.0003,
		MinCommission:  5.0,
		StampTaxRate:   0.001,
		SlippageRate:   0,
		LotSize:        100,
		BandTolerance:  0.01,
	}
}

// commission applies the rate with a floor.
func (c Config) commission(qty int64, price float64) float64 {
	fee := float64(qty) * price * c.CommissionRate
	if fee < c.MinCommission {
		fee = c.MinCommission
	}
	return fee
}

// stampTax is the sell-side transaction tax on proceeds.
func (c Config) stampTax(qty int64, price float64) float64 {
	return float64(qty) * price * c.StampTaxRate
}

// adjusted applies fixed slippage against the trader: buys fill above the
// quoted price, sells below it.
func (c Config) adjusted(side ledger.Side, price float64) float64 {
	if side == ledger.Buy {
		return price * (1 + c.SlippageRate)
	}
	return price * (1 - c.SlippageRate)
}

// basePrice is the requested price an order executes from: the limit price
// for limit orders, the quote otherwise.
func basePrice(o *ledger.Order, q Quote) float64 {
	if o.Kind == ledger.Limit {
		return o.LimitPrice
	}
	return q.Price
}
