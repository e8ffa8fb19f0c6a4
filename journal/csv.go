package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/tradeforge/simledger/ledger"
)

// CSVJournal writes trades and equity snapshots to two CSV files.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"order_id", "symbol", "side", "quantity", "price", "commission", "tax", "realized_pl", "time", "status", "reason", "strategy"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "cash", "market_value", "total_equity", "pnl", "pnl_pct"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSVJournal) RecordTrade(t ledger.TradeRecord) error {
	err := j.trades.Write([]string{
		t.OrderID,
		t.Symbol,
		string(t.Side),
		strconv.FormatInt(t.Quantity, 10),
		f(t.Price),
		f(t.Commission),
		f(t.Tax),
		f(t.RealizedPL),
		t.Time.Format(time.RFC3339),
		string(t.Status),
		t.Reason,
		t.Strategy,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e ledger.EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.MarketValue),
		f(e.TotalEquity),
		f(e.PnL),
		f(e.PnLPct),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
