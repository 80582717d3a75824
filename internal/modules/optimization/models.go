// Package optimization provides the portfolio optimisation core: log-return
// computation, annualised statistics, Monte-Carlo frontier sampling and the
// two constrained weight optimisers.
package optimization

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// ReturnMatrix holds T x N log-returns for N instruments over T time steps,
// in the column order of Tickers. It is built once per request and never
// mutated afterwards.
type ReturnMatrix struct {
	Tickers []string
	Dates   []time.Time
	Data    *mat.Dense
}

// NumPeriods returns the number of time steps T.
func (rm *ReturnMatrix) NumPeriods() int {
	rows, _ := rm.Data.Dims()
	return rows
}

// NumAssets returns the number of instruments N.
func (rm *ReturnMatrix) NumAssets() int {
	_, cols := rm.Data.Dims()
	return cols
}

// WeightVector is an ordered set of portfolio weights, one per instrument.
// Valid vectors have every component in [0,1] and sum to 1 within tolerance.
type WeightVector []float64

// Sum returns the total allocation of the vector.
func (w WeightVector) Sum() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// PortfolioStatistics are the annualised statistics of a weight vector
// against a return matrix.
type PortfolioStatistics struct {
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"expected_volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// PortfolioResult is the output of an optimisation run: a weight vector and
// its statistics. Converged reports whether the solver formally converged;
// when false the weights are the solver's best iterate.
type PortfolioResult struct {
	Tickers   []string     `json:"tickers"`
	Weights   WeightVector `json:"weights"`
	Converged bool         `json:"converged"`
	PortfolioStatistics
}

// SimulationCloud is the Monte-Carlo scatter of annualised return and
// volatility values, one pair per sampled portfolio. Purely a visualisation
// aid, never fed back into optimisation.
type SimulationCloud struct {
	Returns      []float64 `json:"returns"`
	Volatilities []float64 `json:"volatilities"`
}
