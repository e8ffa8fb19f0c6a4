package broker

import (
	"fmt"

	"github.com/tradeforge/simledger/ledger"
)

// Ideal fills every well-formed order at the slippage-adjusted price with
// commission only. It enforces no market regulation; use it to isolate
// strategy behavior from exchange rules.
type Ideal struct {
	cfg Config
	pf  *ledger.Portfolio
}

func NewIdeal(cfg Config, pf *ledger.Portfolio) *Ideal {
	return &Ideal{cfg: cfg, pf: pf}
}

func (b *Ideal) Submit(o *ledger.Order, q Quote) (ledger.TradeRecord, error) {
	price := b.cfg.adjusted(o.Side, basePrice(o, q))
	commission := b.cfg.commission(o.Quantity, price)

	var realized float64
	var err error
	switch o.Side {
	case ledger.Buy:
		err = b.pf.ExecuteBuy(o.Symbol, o.Quantity, price, commission, q.Time)
	case ledger.Sell:
		realized, err = b.pf.ExecuteSell(o.Symbol, o.Quantity, price, commission, 0, q.Time)
	default:
		err = &ledger.ValidationError{Field: "side", Msg: fmt.Sprintf("unknown side %q", o.Side)}
	}
	if err != nil {
		return reject(o, err)
	}

	return fill(b.pf, o, o.Quantity, price, commission, 0, realized, q)
}

// fill marks the order filled and appends the record to the trade log.
// The ledger mutation has already happened by the time we get here.
func fill(pf *ledger.Portfolio, o *ledger.Order, qty int64, price, commission, tax, realized float64, q Quote) (ledger.TradeRecord, error) {
	if err := o.Fill(qty, price, commission, tax, q.Time); err != nil {
		return ledger.TradeRecord{}, err
	}

	rec := ledger.TradeRecord{
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Quantity:   qty,
		Price:      price,
		Commission: commission,
		Tax:        tax,
		RealizedPL: realized,
		Time:       q.Time,
		Status:     o.Status,
		Reason:     o.Reason,
		Strategy:   o.Strategy,
	}
	pf.RecordTrade(rec)
	return rec, nil
}

// reject resolves the order as Rejected when err is a recoverable market
// violation, leaving the ledger untouched. Non-recoverable errors (ledger
// corruption, terminal-state misuse) propagate to abort the run.
func reject(o *ledger.Order, cause error) (ledger.TradeRecord, error) {
	if !ledger.Recoverable(cause) {
		return ledger.TradeRecord{}, cause
	}
	if err := o.Reject(cause.Error()); err != nil {
		return ledger.TradeRecord{}, err
	}
	return ledger.TradeRecord{
		OrderID:  o.ID,
		Symbol:   o.Symbol,
		Side:     o.Side,
		Quantity: o.Quantity,
		Time:     o.CreatedAt,
		Status:   o.Status,
		Reason:   o.Reason,
		Strategy: o.Strategy,
	}, nil
}
