package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVFeed reads daily bars from a CSV file with columns
// date,open,high,low,close,volume. A header row is detected and skipped.
type CSVFeed struct {
	f       *os.File
	r       *csv.Reader
	pending []string // first data row when the file has no header
	line    int
}

func NewCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	feed := &CSVFeed{f: f, r: r}

	first, err := r.Read()
	if err == io.EOF {
		return feed, nil
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	feed.line++

	if len(first) > 0 && strings.EqualFold(strings.TrimSpace(first[0]), "date") {
		// header row, consumed
	} else {
		feed.pending = first
	}
	return feed, nil
}

func (c *CSVFeed) Next() (Bar, bool, error) {
	var row []string
	if c.pending != nil {
		row = c.pending
		c.pending = nil
	} else {
		var err error
		row, err = c.r.Read()
		if err == io.EOF {
			return Bar{}, false, nil
		}
		if err != nil {
			return Bar{}, false, err
		}
		c.line++
	}

	b, err := parseBarRow(row)
	if err != nil {
		return Bar{}, false, fmt.Errorf("line %d: %w", c.line, err)
	}
	return b, true, nil
}

func (c *CSVFeed) Close() error {
	return c.f.Close()
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 6 {
		return Bar{}, fmt.Errorf("need 6 columns date,open,high,low,close,volume, got %d", len(row))
	}

	ds := strings.TrimSpace(row[0])
	date, err := time.Parse("2006-01-02", ds)
	if err != nil {
		// Some exports carry a full timestamp; accept RFC3339 too.
		if date, err = time.Parse(time.RFC3339, ds); err != nil {
			return Bar{}, fmt.Errorf("bad date %q", row[0])
		}
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad field %q: %w", row[i+1], err)
		}
		vals[i] = v
	}

	return Bar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
