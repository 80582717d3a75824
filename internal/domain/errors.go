package domain

import (
	"fmt"
	"strings"
	"time"
)

// DataUnavailableError indicates the market data provider returned no data
// for the requested tickers and range. It is propagated to the caller
// unchanged and never retried.
type DataUnavailableError struct {
	Tickers []string
	Start   time.Time
	End     time.Time
}

func (e DataUnavailableError) Error() string {
	return fmt.Sprintf("no market data for [%s] between %s and %s",
		strings.Join(e.Tickers, ","),
		e.Start.Format("2006-01-02"),
		e.End.Format("2006-01-02"))
}

// InvalidPriceError indicates a retrieved price is non-positive or missing,
// making the log-return undefined.
type InvalidPriceError struct {
	Ticker string
	Date   time.Time
	Price  float64
}

func (e InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %v for %s on %s: log-return undefined",
		e.Price, e.Ticker, e.Date.Format("2006-01-02"))
}

// InsufficientDataError indicates fewer than 2 aligned time steps are
// available, so no return can be computed.
type InsufficientDataError struct {
	Rows int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d aligned time steps, need at least 2", e.Rows)
}

// OptimisationError indicates the nonlinear solver failed outright (as
// opposed to stopping without formal convergence, which yields a result
// with Converged=false).
type OptimisationError struct {
	Objective string
	Err       error
}

func (e OptimisationError) Error() string {
	return fmt.Sprintf("%s optimisation failed: %v", e.Objective, e.Err)
}

func (e OptimisationError) Unwrap() error {
	return e.Err
}
