package ledger

import (
	"fmt"
	"time"
)

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Kind distinguishes market orders from limit orders.
type Kind string

const (
	Market Kind = "MARKET"
	Limit  Kind = "LIMIT"
)

// Status is the lifecycle state of an order. Transitions are monotonic:
// Filled, Rejected and Cancelled are terminal.
type Status string

const (
	Pending         Status = "PENDING"
	PartiallyFilled Status = "PARTIALLY_FILLED"
	Filled          Status = "FILLED"
	Rejected        Status = "REJECTED"
	Cancelled       Status = "CANCELLED"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == Filled || s == Rejected || s == Cancelled
}

// Order is a requested trade and its execution outcome. Once it reaches a
// terminal status it is immutable; the execution policy owns it from
// submission until resolution.
type Order struct {
	ID         string
	Symbol     string
	Side       Side
	Quantity   int64
	Kind       Kind
	LimitPrice float64

	Status         Status
	FilledQuantity int64
	FilledPrice    float64
	Commission     float64
	Tax            float64

	CreatedAt time.Time
	FilledAt  time.Time

	Strategy string
	Reason   string
}

// NewOrder builds a Pending order, validating the request shape. Lot-size
// legality is an execution-policy concern and is checked at submission.
func NewOrder(symbol string, side Side, qty int64, kind Kind, limitPrice float64, createdAt time.Time) (*Order, error) {
	if symbol == "" {
		return nil, &ValidationError{Field: "symbol", Msg: "must not be empty"}
	}
	if side != Buy && side != Sell {
		return nil, &ValidationError{Field: "side", Msg: fmt.Sprintf("unknown side %q", side)}
	}
	if qty <= 0 {
		return nil, &ValidationError{Field: "quantity", Msg: "must be positive"}
	}
	switch kind {
	case Market:
		if limitPrice != 0 {
			return nil, &ValidationError{Field: "limit_price", Msg: "must not be set on a market order"}
		}
	case Limit:
		if limitPrice <= 0 {
			return nil, &ValidationError{Field: "limit_price", Msg: "required on a limit order"}
		}
	default:
		return nil, &ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown kind %q", kind)}
	}

	return &Order{
		Symbol:     symbol,
		Side:       side,
		Quantity:   qty,
		Kind:       kind,
		LimitPrice: limitPrice,
		Status:     Pending,
		CreatedAt:  createdAt,
	}, nil
}

func (o *Order) guard() error {
	if o.Status.Terminal() {
		return fmt.Errorf("order %s (%s): %w", o.ID, o.Status, ErrOrderFinal)
	}
	return nil
}

// Fill records the execution outcome and moves the order to Filled
// (or PartiallyFilled when qty < o.Quantity).
func (o *Order) Fill(qty int64, price, commission, tax float64, at time.Time) error {
	if err := o.guard(); err != nil {
		return err
	}
	if qty <= 0 || qty > o.Quantity-o.FilledQuantity {
		return fmt.Errorf("order %s: fill quantity %d out of range", o.ID, qty)
	}

	o.FilledQuantity += qty
	o.FilledPrice = price
	o.Commission += commission
	o.Tax += tax
	o.FilledAt = at

	if o.FilledQuantity == o.Quantity {
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
	}
	return nil
}

// Reject marks the order Rejected with a human-readable reason.
func (o *Order) Reject(reason string) error {
	if err := o.guard(); err != nil {
		return err
	}
	o.Status = Rejected
	o.Reason = reason
	return nil
}

// Cancel transitions a Pending or PartiallyFilled order to Cancelled.
// There are no in-flight asynchronous fills to race against; cancellation
// is synchronous and immediate.
func (o *Order) Cancel() error {
	if err := o.guard(); err != nil {
		return err
	}
	o.Status = Cancelled
	return nil
}
