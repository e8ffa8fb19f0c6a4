// Package journal persists the trade log and equity history of a run as it
// happens. The simulation core works purely in memory; a journal is an
// optional mirror for later inspection.
package journal

import "github.com/tradeforge/simledger/ledger"

type Journal interface {
	RecordTrade(ledger.TradeRecord) error
	RecordEquity(ledger.EquitySnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(ledger.TradeRecord) error     { return nil }
func (Nop) RecordEquity(ledger.EquitySnapshot) error { return nil }
func (Nop) Close() error                             { return nil }
