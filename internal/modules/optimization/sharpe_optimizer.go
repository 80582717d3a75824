package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
)

// MaxSharpeOptimiser finds the weight vector maximising the portfolio
// Sharpe ratio, by minimising its negation.
type MaxSharpeOptimiser struct{}

// NewMaxSharpeOptimiser creates a new maximum-Sharpe optimiser.
func NewMaxSharpeOptimiser() *MaxSharpeOptimiser {
	return &MaxSharpeOptimiser{}
}

// Optimise solves max sharpe(w) subject to sum(w)=1 and w_i in [0,1].
//
// Weights are rounded to 3 decimal places and the reported statistics are
// recomputed from the rounded vector. When the solver stops without formal
// convergence the best iterate is still returned, flagged Converged=false.
func (o *MaxSharpeOptimiser) Optimise(tickers []string, m *Moments) (*PortfolioResult, error) {
	n := m.NumAssets()
	if n == 0 {
		return nil, domain.OptimisationError{Objective: "max-sharpe", Err: fmt.Errorf("no instruments provided")}
	}
	if len(tickers) != n {
		return nil, domain.OptimisationError{
			Objective: "max-sharpe",
			Err:       fmt.Errorf("%d tickers for %d return columns", len(tickers), n),
		}
	}

	// Single instrument: the feasible region is the point [1.0].
	if n == 1 {
		weights := WeightVector{1.0}
		return &PortfolioResult{
			Tickers:             tickers,
			Weights:             weights,
			Converged:           true,
			PortfolioStatistics: m.Statistics(weights),
		}, nil
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectToUnitBox(x)

			var ret, variance float64
			for i := 0; i < n; i++ {
				ret += m.mu[i] * w[i]
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * m.sigma.At(i, j)
				}
			}
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			return -ret/stdDev + sumPenalty(w)
		},
		Grad: func(grad, x []float64) {
			w := projectToUnitBox(x)

			var ret, variance float64
			for i := 0; i < n; i++ {
				ret += m.mu[i] * w[i]
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * m.sigma.At(i, j)
				}
			}
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * m.sigma.At(i, j) * w[j]
				}
				grad[i] = -m.mu[i]/stdDev + ret*dVariance/(2*stdDev*stdDev*stdDev)
			}

			addSumPenaltyGradient(grad, w)
		},
	}

	x, converged, err := solve(problem, n)
	if err != nil {
		return nil, domain.OptimisationError{Objective: "max-sharpe", Err: err}
	}

	weights := roundWeights(normaliseWeights(x), 3)

	return &PortfolioResult{
		Tickers:             tickers,
		Weights:             weights,
		Converged:           converged,
		PortfolioStatistics: m.Statistics(weights),
	}, nil
}
