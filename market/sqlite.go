package market

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const barSchema = `
CREATE TABLE IF NOT EXISTS bars (
	symbol TEXT NOT NULL,
	date DATETIME NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	PRIMARY KEY (symbol, date)
);

CREATE INDEX IF NOT EXISTS idx_bars_symbol_date ON bars(symbol, date);
`

// SQLiteStore keeps daily bars in a local SQLite file. It doubles as a
// Feed source so datasets downloaded once can be replayed many times.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(barSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Put inserts or replaces one bar for the symbol.
func (s *SQLiteStore) Put(symbol string, b Bar) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO bars
		(symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume,
	)
	return err
}

// Feed returns a Feed over the stored bars for symbol between start and end
// inclusive, ordered by date.
func (s *SQLiteStore) Feed(symbol string, start, end time.Time) (Feed, error) {
	rows, err := s.db.Query(`
		SELECT date, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		symbol, start, end,
	)
	if err != nil {
		return nil, err
	}
	return &sqliteFeed{rows: rows}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteFeed struct {
	rows *sql.Rows
}

func (f *sqliteFeed) Next() (Bar, bool, error) {
	if !f.rows.Next() {
		return Bar{}, false, f.rows.Err()
	}
	var b Bar
	if err := f.rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
		return Bar{}, false, err
	}
	return b, true, nil
}

func (f *sqliteFeed) Close() error {
	return f.rows.Close()
}
