// Package stats post-processes a completed backtest: pure functions over
// the equity curve and trade log. Nothing here mutates ledger state.
package stats

import (
	"math"

	"github.com/tradeforge/simledger/ledger"
)

// TradingDaysPerYear is the annualization basis.
const TradingDaysPerYear = 252

// Result is the computed performance summary of one run.
type Result struct {
	InitialCapital float64
	FinalEquity    float64
	TotalReturn    float64 // fraction, e.g. 0.05 for +5%

	AnnualizedReturn     float64
	AnnualizedVolatility float64
	SharpeRatio          float64
	SortinoRatio         float64
	MaxDrawdown          float64 // fraction, positive
	CalmarRatio          float64

	TotalTrades   int // fills only
	ClosingTrades int // sells; the only trades that realize PnL
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	ProfitFactor  float64
	AvgWin        float64
	AvgLoss       float64

	TradingDays int
}

// Compute derives all metrics from one run's outputs. Equity is the
// per-bar snapshot sequence, trades the fill log, tradingDays the number
// of bars replayed.
func Compute(initial float64, equity []ledger.EquitySnapshot, trades []ledger.TradeRecord, tradingDays int, riskFreeRate float64) Result {
	r := Result{
		InitialCapital: initial,
		FinalEquity:    initial,
		TradingDays:    tradingDays,
	}

	curve := make([]float64, 0, len(equity)+1)
	curve = append(curve, initial)
	for _, e := range equity {
		curve = append(curve, e.TotalEquity)
	}
	if len(curve) > 1 {
		r.FinalEquity = curve[len(curve)-1]
	}
	if initial > 0 {
		r.TotalReturn = (r.FinalEquity - initial) / initial
	}

	returns := Returns(curve)

	if tradingDays > 0 && initial > 0 && r.FinalEquity > 0 {
		years := float64(tradingDays) / TradingDaysPerYear
		if years > 0 {
			r.AnnualizedReturn = math.Pow(r.FinalEquity/initial, 1/years) - 1
		}
	}

	r.AnnualizedVolatility = Stdev(returns) * math.Sqrt(TradingDaysPerYear)
	if r.AnnualizedVolatility > 0 {
		r.SharpeRatio = (r.AnnualizedReturn - riskFreeRate) / r.AnnualizedVolatility
	}

	downside := make([]float64, 0, len(returns))
	for _, v := range returns {
		if v < 0 {
			downside = append(downside, v)
		}
	}
	downsideVol := Stdev(downside) * math.Sqrt(TradingDaysPerYear)
	if downsideVol > 0 {
		r.SortinoRatio = (r.AnnualizedReturn - riskFreeRate) / downsideVol
	}

	r.MaxDrawdown = MaxDrawdown(curve)
	if r.MaxDrawdown > 0 {
		r.CalmarRatio = r.AnnualizedReturn / r.MaxDrawdown
	}

	tallyTrades(&r, trades)
	return r
}

// Returns computes simple per-step returns of the curve.
func Returns(curve []float64) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, curve[i]/curve[i-1]-1)
	}
	return out
}

// Stdev is the sample standard deviation.
func Stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// MaxDrawdown is the deepest peak-to-trough decline of the curve, as a
// positive fraction of the peak.
func MaxDrawdown(curve []float64) float64 {
	var peak, worst float64
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// tallyTrades derives win/loss statistics. Only closing (sell) trades are
// counted: an opening trade never realizes PnL.
func tallyTrades(r *Result, trades []ledger.TradeRecord) {
	var grossWin, grossLoss float64

	for _, t := range trades {
		if t.Status != ledger.Filled && t.Status != ledger.PartiallyFilled {
			continue
		}
		r.TotalTrades++
		if t.Side != ledger.Sell {
			continue
		}
		r.ClosingTrades++
		if t.RealizedPL > 0 {
			r.WinningTrades++
			grossWin += t.RealizedPL
		} else if t.RealizedPL < 0 {
			r.LosingTrades++
			grossLoss += -t.RealizedPL
		}
	}

	if r.ClosingTrades > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(r.ClosingTrades)
	}
	if r.WinningTrades > 0 {
		r.AvgWin = grossWin / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = grossLoss / float64(r.LosingTrades)
	}
	if grossLoss > 0 {
		r.ProfitFactor = grossWin / grossLoss
	}
}
