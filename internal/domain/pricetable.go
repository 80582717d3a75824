// Package domain holds the shared contracts of the optimiser: the market
// data capability interface, the price table it produces, and the error
// taxonomy surfaced by the computation core.
package domain

import (
	"context"
	"time"
)

// PriceField selects which series of the OHLCV table a provider returns.
type PriceField string

const (
	FieldOpen     PriceField = "open"
	FieldHigh     PriceField = "high"
	FieldLow      PriceField = "low"
	FieldClose    PriceField = "close"
	FieldAdjClose PriceField = "adjclose"
	FieldVolume   PriceField = "volume"
)

// PriceTable is a date-aligned price matrix: one row per trading day, one
// column per ticker, in the order of Tickers. A provider always returns a
// table shape, even for a single ticker.
type PriceTable struct {
	Tickers []string
	Dates   []time.Time
	Prices  [][]float64 // len(Dates) rows x len(Tickers) columns
}

// NumRows returns the number of aligned trading days.
func (t *PriceTable) NumRows() int {
	return len(t.Dates)
}

// MarketDataProvider fetches historical prices for a set of tickers.
// Implementations must return DataUnavailableError when no data exists for
// the requested parameters, and must never retry internally.
type MarketDataProvider interface {
	GetHistoricalPrices(ctx context.Context, tickers []string, field PriceField, start, end time.Time) (*PriceTable, error)
}
