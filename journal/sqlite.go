package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tradeforge/simledger/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	commission REAL NOT NULL,
	tax REAL NOT NULL,
	realized_pl REAL NOT NULL,
	time DATETIME NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL,
	strategy TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	market_value REAL NOT NULL,
	total_equity REAL NOT NULL,
	pnl REAL NOT NULL,
	pnl_pct REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
`

// SQLiteJournal persists trades and equity snapshots keyed by run ID, so
// one database file can hold many runs side by side.
type SQLiteJournal struct {
	db    *sql.DB
	runID string
}

func NewSQLite(path, runID string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db, runID: runID}, nil
}

func (j *SQLiteJournal) RecordTrade(t ledger.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, order_id, symbol, side, quantity, price, commission, tax, realized_pl, time, status, reason, strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, t.OrderID, t.Symbol, string(t.Side), t.Quantity, t.Price,
		t.Commission, t.Tax, t.RealizedPL, t.Time, string(t.Status), t.Reason, t.Strategy,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e ledger.EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, cash, market_value, total_equity, pnl, pnl_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.runID, e.Time, e.Cash, e.MarketValue, e.TotalEquity, e.PnL, e.PnLPct,
	)
	return err
}

// ListTrades returns the recorded trades for a run ordered by time.
func (j *SQLiteJournal) ListTrades(runID string) ([]ledger.TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, symbol, side, quantity, price, commission, tax, realized_pl, time, status, reason, strategy
		FROM trades WHERE run_id = ? ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.TradeRecord
	for rows.Next() {
		var t ledger.TradeRecord
		var side, status string
		var ts time.Time
		if err := rows.Scan(&t.OrderID, &t.Symbol, &side, &t.Quantity, &t.Price,
			&t.Commission, &t.Tax, &t.RealizedPL, &ts, &status, &t.Reason, &t.Strategy); err != nil {
			return nil, err
		}
		t.Side = ledger.Side(side)
		t.Status = ledger.Status(status)
		t.Time = ts
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquity returns the equity history for a run ordered by time.
func (j *SQLiteJournal) ListEquity(runID string) ([]ledger.EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, market_value, total_equity, pnl, pnl_pct
		FROM equity WHERE run_id = ? ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.EquitySnapshot
	for rows.Next() {
		var e ledger.EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Cash, &e.MarketValue, &e.TotalEquity, &e.PnL, &e.PnLPct); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
