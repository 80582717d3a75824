package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Moments holds the per-period sample moments of a return matrix together
// with the annualisation factor. Every consumer of portfolio statistics
// (both optimisers and the Monte-Carlo sampler) goes through the same
// three functions below, so their numbers are always consistent.
type Moments struct {
	mu     []float64    // per-period mean return, one per instrument
	sigma  *mat.SymDense // per-period sample covariance
	factor float64      // trading periods per year
}

// NewMoments computes mean vector and sample covariance of a return matrix.
// periodsPerYear is the annualisation factor A (252 for daily returns).
func NewMoments(rm *ReturnMatrix, periodsPerYear int) *Moments {
	n := rm.NumAssets()

	mu := make([]float64, n)
	col := make([]float64, rm.NumPeriods())
	for i := 0; i < n; i++ {
		mat.Col(col, i, rm.Data)
		mu[i] = stat.Mean(col, nil)
	}

	sigma := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(sigma, rm.Data, nil)

	return &Moments{
		mu:     mu,
		sigma:  sigma,
		factor: float64(periodsPerYear),
	}
}

// NumAssets returns the number of instruments the moments describe.
func (m *Moments) NumAssets() int {
	return len(m.mu)
}

// AnnualisedReturn computes (w . mu) * A.
func (m *Moments) AnnualisedReturn(w []float64) float64 {
	var ret float64
	for i, weight := range w {
		ret += weight * m.mu[i]
	}
	return ret * m.factor
}

// AnnualisedVolatility computes sqrt(w' (Sigma * A) w). The quadratic form
// is clamped at zero before the square root; covariance matrices are
// positive semi-definite but floating-point round-off can dip below zero.
func (m *Moments) AnnualisedVolatility(w []float64) float64 {
	var variance float64
	for i := range w {
		for j := range w {
			variance += w[i] * w[j] * m.sigma.At(i, j)
		}
	}
	variance *= m.factor
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// SharpeRatio computes annualised return over annualised volatility,
// defined as 0 when the volatility is exactly 0.
func (m *Moments) SharpeRatio(w []float64) float64 {
	vol := m.AnnualisedVolatility(w)
	if vol == 0 {
		return 0
	}
	return m.AnnualisedReturn(w) / vol
}

// Statistics evaluates all three annualised statistics for a weight vector.
func (m *Moments) Statistics(w []float64) PortfolioStatistics {
	ret := m.AnnualisedReturn(w)
	vol := m.AnnualisedVolatility(w)
	sharpe := 0.0
	if vol != 0 {
		sharpe = ret / vol
	}
	return PortfolioStatistics{
		ExpectedReturn: ret,
		Volatility:     vol,
		SharpeRatio:    sharpe,
	}
}
