// Package backtest drives a strategy over a historical bar sequence and
// produces an auditable report. The loop is single-threaded and strictly
// sequential: market state is read, the strategy decides, the ledger
// mutates, an equity snapshot is taken. Nothing in the loop consults the
// wall clock or any other ambient state, so two runs over the same bars
// and the same strategy produce identical histories.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/yanun0323/logs"

	"github.com/tradeforge/simledger/broker"
	"github.com/tradeforge/simledger/internal/id"
	"github.com/tradeforge/simledger/journal"
	"github.com/tradeforge/simledger/ledger"
	"github.com/tradeforge/simledger/market"
	"github.com/tradeforge/simledger/risk"
	"github.com/tradeforge/simledger/stats"
)

// Policy selects the execution policy for a run.
const (
	PolicyExchange = "exchange" // regulation-aware filler
	PolicyIdeal    = "ideal"    // fixed-slippage filler, no market rules
)

// Config fully describes one run. Every run is constructed from an explicit
// Config; there is no shared or ambient state between runs.
type Config struct {
	Symbol         string
	InitialCapital float64

	Policy  string // PolicyExchange (default) or PolicyIdeal
	Broker  broker.Config
	Session market.Session // zero value means DefaultSession

	// ExecMinute is the time of day, in minutes from midnight, orders are
	// evaluated at. Daily bars carry no intraday time, so the loop stamps
	// a fixed in-session offset. Default is 14:45.
	ExecMinute int

	// Risk, when non-nil, enables the pre-trade gate.
	Risk *risk.Policy

	RiskFreeRate float64
}

func (c *Config) normalize() error {
	if c.Symbol == "" {
		return fmt.Errorf("backtest: symbol is required")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("backtest: initial capital must be positive")
	}
	switch c.Policy {
	case "":
		c.Policy = PolicyExchange
	case PolicyExchange, PolicyIdeal:
	default:
		return fmt.Errorf("backtest: unknown policy %q", c.Policy)
	}
	if len(c.Session.Windows) == 0 {
		c.Session = market.DefaultSession()
	}
	if c.ExecMinute <= 0 {
		c.ExecMinute = 14*60 + 45
	}
	if c.Broker.LotSize <= 0 {
		c.Broker.LotSize = 100
	}
	return nil
}

// Engine runs backtests. It may be reused: every Run builds a fresh ledger,
// execution policy and risk manager, so runs never observe each other.
type Engine struct {
	Config   Config
	Strategy Strategy
	Journal  journal.Journal // optional mirror of trades and equity
}

func New(cfg Config, strat Strategy) *Engine {
	return &Engine{Config: cfg, Strategy: strat}
}

// Run replays the bars against the strategy. Strategy and order-level
// errors are absorbed (the order is rejected, the loop continues); a bar
// that cannot price the portfolio or a broken ledger invariant aborts.
func (e *Engine) Run(ctx context.Context, bars market.Bars) (*Report, error) {
	cfg := e.Config
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if e.Strategy == nil {
		return nil, fmt.Errorf("backtest: strategy is required")
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("backtest: no bars: %w", ledger.ErrMissingMarketData)
	}
	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %v: %w", err, ledger.ErrMissingMarketData)
	}

	jnl := e.Journal
	if jnl == nil {
		jnl = journal.Nop{}
	}

	pf, err := ledger.NewPortfolio(cfg.InitialCapital)
	if err != nil {
		return nil, err
	}

	var exec broker.Broker
	switch cfg.Policy {
	case PolicyIdeal:
		exec = broker.NewIdeal(cfg.Broker, pf)
	default:
		exec = broker.NewExchange(cfg.Broker, cfg.Session, pf)
	}

	var gate *risk.Manager
	if cfg.Risk != nil {
		gate = risk.NewManager(*cfg.Risk)
	}

	e.Strategy.Reset()

	run := &runState{
		cfg:  cfg,
		pf:   pf,
		exec: exec,
		gate: gate,
		jnl:  jnl,
	}

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !bar.Valid() {
			return nil, fmt.Errorf("bar %s: %w", bar.Date.Format("2006-01-02"), ledger.ErrMissingMarketData)
		}

		prevClose := 0.0
		if i > 0 {
			prevClose = bars[i-1].Close
		}

		if err := run.step(ctx, e.Strategy, bars.UpTo(i), bar, prevClose); err != nil {
			return nil, err
		}
	}

	metrics := stats.Compute(cfg.InitialCapital, pf.EquityHistory(), pf.Trades(), len(bars), cfg.RiskFreeRate)

	return &Report{
		RunID:     id.NewRunID(),
		Strategy:  e.Strategy.Name(),
		Symbol:    cfg.Symbol,
		StartDate: bars[0].Date,
		EndDate:   bars[len(bars)-1].Date,
		Metrics:   metrics,
		Equity:    pf.EquityHistory(),
		Trades:    pf.Trades(),
		Orders:    run.orderSnapshots(),
		Positions: pf.FinalPositions(),
		Summary:   pf.Summary(),
	}, nil
}

// runState is the per-run mutable state: the engine itself stays reusable.
type runState struct {
	cfg  Config
	pf   *ledger.Portfolio
	exec broker.Broker
	gate *risk.Manager
	jnl  journal.Journal

	orderSeq int
	orders   []*ledger.Order
}

// step advances the simulation by one bar.
func (r *runState) step(ctx context.Context, strat Strategy, history market.Bars, bar market.Bar, prevClose float64) error {
	simTime := atMinute(bar.Date, r.cfg.ExecMinute)

	// Mark-to-market precedes everything else on the bar.
	r.pf.UpdatePrices(map[string]float64{r.cfg.Symbol: bar.Close})
	if r.gate != nil {
		r.gate.ObserveEquity(r.pf.TotalEquity())
	}

	snap := r.pf.Snapshot()

	sig, err := strat.GenerateSignal(ctx, r.cfg.Symbol, history, snap)
	if err != nil {
		// Strategy errors are not fatal; the bar simply trades nothing.
		logs.Warnf("strategy %s on %s: %v", strat.Name(), bar.Date.Format("2006-01-02"), err)
	} else if o := r.buildOrder(strat.Name(), sig, snap, bar.Close, simTime); o != nil {
		if err := r.submit(strat, o, broker.Quote{Time: simTime, Price: bar.Close, PrevClose: prevClose}); err != nil {
			return err
		}
	}

	// One equity snapshot per bar, trade or no trade.
	eq := r.pf.RecordEquity(bar.Date)
	if err := r.jnl.RecordEquity(eq); err != nil {
		return fmt.Errorf("journal equity: %w", err)
	}
	return nil
}

// buildOrder translates a signal into zero or one market order. Quantities
// are floored to whole lots; a signal that sizes to zero trades nothing.
func (r *runState) buildOrder(strategy string, sig Signal, snap ledger.SnapshotView, price float64, at time.Time) *ledger.Order {
	var side ledger.Side
	switch sig.Action {
	case ActionBuy:
		side = ledger.Buy
	case ActionSell:
		side = ledger.Sell
	case ActionHold, "":
		return nil
	default:
		logs.Warnf("strategy %s: unknown action %q, holding", strategy, sig.Action)
		return nil
	}

	lot := r.cfg.Broker.LotSize
	qty := sig.Quantity
	if qty <= 0 {
		switch side {
		case ledger.Buy:
			qty = floorToLot(int64(snap.Cash*sig.TargetRatio/price), lot)
		case ledger.Sell:
			pos, ok := snap.Position(r.cfg.Symbol)
			if !ok {
				return nil
			}
			if sig.TargetRatio >= 1 {
				qty = pos.Quantity
			} else {
				qty = floorToLot(int64(float64(pos.Quantity)*sig.TargetRatio), lot)
			}
		}
	}
	if qty <= 0 {
		return nil
	}

	o, err := ledger.NewOrder(r.cfg.Symbol, side, qty, ledger.Market, 0, at)
	if err != nil {
		logs.Warnf("strategy %s: %v", strategy, err)
		return nil
	}

	r.orderSeq++
	o.ID = fmt.Sprintf("ORD-%06d", r.orderSeq)
	o.Strategy = strategy
	o.Reason = sig.Reason
	return o
}

// submit routes the order through the risk gate and execution policy.
func (r *runState) submit(strat Strategy, o *ledger.Order, q broker.Quote) error {
	r.orders = append(r.orders, o)
	dateKey := q.Time.Format("2006-01-02")

	if r.gate != nil {
		pos, _ := r.pf.Snapshot().Position(o.Symbol)
		decision := r.gate.Evaluate(risk.Intent{
			Symbol:  o.Symbol,
			Buy:     o.Side == ledger.Buy,
			Value:   float64(o.Quantity) * q.Price,
			DateKey: dateKey,
		}, risk.Snapshot{
			TotalEquity:   r.pf.TotalEquity(),
			PositionValue: float64(pos.Quantity) * pos.MarkPrice,
		})
		if !decision.Allowed {
			if err := o.Reject(decision.Reason()); err != nil {
				return err
			}
			logs.Infof("order %s rejected by risk gate: %s", o.ID, o.Reason)
			return r.jnl.RecordTrade(rejectionRecord(o))
		}
	}

	rec, err := r.exec.Submit(o, q)
	if err != nil {
		return err
	}
	if err := r.jnl.RecordTrade(rec); err != nil {
		return fmt.Errorf("journal trade: %w", err)
	}

	if o.Status == ledger.Rejected {
		logs.Infof("order %s rejected: %s", o.ID, o.Reason)
		return nil
	}

	strat.OnTrade(rec)
	if r.gate != nil {
		r.gate.RecordFill(dateKey, rec.RealizedPL)
	}
	return nil
}

// orderSnapshots returns immutable copies of every order the run resolved,
// rejected ones included.
func (r *runState) orderSnapshots() []ledger.Order {
	out := make([]ledger.Order, len(r.orders))
	for i, o := range r.orders {
		out[i] = *o
	}
	return out
}

func rejectionRecord(o *ledger.Order) ledger.TradeRecord {
	return ledger.TradeRecord{
		OrderID:  o.ID,
		Symbol:   o.Symbol,
		Side:     o.Side,
		Quantity: o.Quantity,
		Time:     o.CreatedAt,
		Status:   o.Status,
		Reason:   o.Reason,
		Strategy: o.Strategy,
	}
}

func atMinute(date time.Time, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minute/60, minute%60, 0, 0, date.Location())
}

func floorToLot(qty, lot int64) int64 {
	if lot <= 0 {
		return qty
	}
	return qty - qty%lot
}
