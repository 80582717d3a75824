package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
)

// ReturnsCalculator converts aligned price series into log-returns.
type ReturnsCalculator struct{}

// NewReturnsCalculator creates a new returns calculator.
func NewReturnsCalculator() *ReturnsCalculator {
	return &ReturnsCalculator{}
}

// LogReturns computes r[t][i] = ln(price[t][i] / price[t-1][i]) over an
// aligned price table. The first price row has no predecessor and is
// dropped, never filled with a sentinel.
//
// Fails with InsufficientDataError when fewer than 2 aligned rows exist,
// and with InvalidPriceError when any price is non-positive or missing
// (the log is undefined there; nothing is silently substituted).
func (rc *ReturnsCalculator) LogReturns(prices *domain.PriceTable) (*ReturnMatrix, error) {
	rows := prices.NumRows()
	n := len(prices.Tickers)

	if rows < 2 {
		return nil, domain.InsufficientDataError{Rows: rows}
	}

	for t := 0; t < rows; t++ {
		for i := 0; i < n; i++ {
			p := prices.Prices[t][i]
			if math.IsNaN(p) || p <= 0 {
				return nil, domain.InvalidPriceError{
					Ticker: prices.Tickers[i],
					Date:   prices.Dates[t],
					Price:  p,
				}
			}
		}
	}

	data := mat.NewDense(rows-1, n, nil)
	for t := 1; t < rows; t++ {
		for i := 0; i < n; i++ {
			data.Set(t-1, i, math.Log(prices.Prices[t][i]/prices.Prices[t-1][i]))
		}
	}

	return &ReturnMatrix{
		Tickers: prices.Tickers,
		Dates:   prices.Dates[1:],
		Data:    data,
	}, nil
}
