// Package strategies is the built-in strategy catalog. Each strategy
// implements the backtest contract and is selected by name; callers never
// inspect concrete types at runtime.
package strategies

import (
	"fmt"
	"strings"

	"github.com/tradeforge/simledger/backtest"
)

// Params configures the built-in strategies.
type Params struct {
	FastPeriod int
	SlowPeriod int
	Ratio      float64 // cash fraction committed on entry
}

// ByName builds one of the built-in strategies.
func ByName(name string, p Params) (backtest.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none", "hold":
		return Noop{}, nil

	case "buy-hold", "buyhold":
		return NewBuyHold(p.Ratio), nil

	case "sma-cross", "smacross":
		return NewSMACross(p.FastPeriod, p.SlowPeriod, p.Ratio), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, buy-hold, sma-cross)", name)
	}
}
