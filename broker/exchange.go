package broker

import (
	"fmt"
	"strings"

	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/market"
)

// Daily price-move caps off the previous close. High-volatility listing
// tiers get the wide band; everything else the narrow one.
const (
	NarrowBand = 0.10
	WideBand   = 0.20
)

// wideBandPrefixes marks the listing tiers subject to the wide band,
// determined by symbol prefix.
var wideBandPrefixes = []string{"300", "688"}

// BandFor returns the daily price-limit band for a symbol.
func BandFor(symbol string) float64 {
	for _, p := range wideBandPrefixes {
		if strings.HasPrefix(symbol, p) {
			return WideBand
		}
	}
	return NarrowBand
}

// Exchange is the regulation-aware execution policy. Before filling it
// checks, in order: the trading-hours gate, T+1 settlement on sells, and the
// price-limit band. Each check rejects recoverably; the run continues.
// Sells additionally pay the transaction tax on proceeds.
type Exchange struct {
	cfg     Config
	session market.Session
	pf      *ledger.Portfolio
}

func NewExchange(cfg Config, session market.Session, pf *ledger.Portfolio) *Exchange {
	if cfg.LotSize <= 0 {
		cfg.LotSize = 100
	}
	return &Exchange{cfg: cfg, session: session, pf: pf}
}

func (b *Exchange) Submit(o *ledger.Order, q Quote) (ledger.TradeRecord, error) {
	qty, price, err := b.validate(o, q)
	if err != nil {
		return reject(o, err)
	}

	price = b.cfg.adjusted(o.Side, price)
	commission := b.cfg.commission(qty, price)

	var tax, realized float64
	switch o.Side {
	case ledger.Buy:
		err = b.pf.ExecuteBuy(o.Symbol, qty, price, commission, q.Time)
	case ledger.Sell:
		tax = b.cfg.stampTax(qty, price)
		realized, err = b.pf.ExecuteSell(o.Symbol, qty, price, commission, tax, q.Time)
	}
	if err != nil {
		return reject(o, err)
	}

	return fill(b.pf, o, qty, price, commission, tax, realized, q)
}

// validate runs the pre-fill checks and returns the possibly size-reduced
// quantity and the requested execution price. Any failure leaves the ledger
// untouched.
func (b *Exchange) validate(o *ledger.Order, q Quote) (int64, float64, error) {
	if o.Quantity%b.cfg.LotSize != 0 {
		return 0, 0, &ledger.ValidationError{
			Field: "quantity",
			Msg:   fmt.Sprintf("%d is not a multiple of lot size %d", o.Quantity, b.cfg.LotSize),
		}
	}

	// 1. Trading-hours gate. Orders outside the windows are not queued.
	if !b.session.Contains(q.Time) {
		return 0, 0, fmt.Errorf("%s: %w", q.Time.Format("15:04"), ledger.ErrOutsideTradingHours)
	}

	// 2. Settlement restriction: same-day purchases cannot be liquidated.
	if o.Side == ledger.Sell {
		pos := b.pf.Position(o.Symbol)
		if pos == nil || pos.Quantity == 0 {
			return 0, 0, fmt.Errorf("sell %s: no position: %w", o.Symbol, ledger.ErrInsufficientShares)
		}
		if !pos.SellableOn(q.Time) {
			return 0, 0, fmt.Errorf("%s bought %s: %w",
				o.Symbol, pos.PurchasedAt.Format("2006-01-02"), ledger.ErrSettlementRestricted)
		}
	}

	price := basePrice(o, q)
	qty := o.Quantity

	// 3. Price-limit band off the true previous close. Without a prior
	// close (first bar of a run) no band exists.
	if q.PrevClose > 0 {
		band := BandFor(o.Symbol)
		upper := q.PrevClose * (1 + band)
		lower := q.PrevClose * (1 - band)

		switch o.Side {
		case ledger.Buy:
			if price >= upper*(1-b.cfg.BandTolerance) {
				// Near limit-up the queue rarely fills in full; reduce
				// size instead of rejecting.
				qty = reduceToLot(qty/2, b.cfg.LotSize)
				if qty == 0 {
					return 0, 0, fmt.Errorf("buy %s at %.4f near limit-up %.4f, size reduced to zero: %w",
						o.Symbol, price, upper, ledger.ErrPriceLimit)
				}
			}
		case ledger.Sell:
			if price <= lower*(1+b.cfg.BandTolerance) {
				return 0, 0, fmt.Errorf("sell %s at %.4f near limit-down %.4f: %w",
					o.Symbol, price, lower, ledger.ErrPriceLimit)
			}
		}
	}

	return qty, price, nil
}

// reduceToLot floors qty to a whole number of lots.
func reduceToLot(qty, lot int64) int64 {
	return qty - qty%lot
}
