package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
)

// MinVolatilityOptimiser finds the weight vector minimising the annualised
// portfolio volatility.
type MinVolatilityOptimiser struct{}

// NewMinVolatilityOptimiser creates a new minimum-volatility optimiser.
func NewMinVolatilityOptimiser() *MinVolatilityOptimiser {
	return &MinVolatilityOptimiser{}
}

// Optimise solves min volatility(w) subject to sum(w)=1 and w_i in [0,1].
// Same seed, bounds, rounding-then-recompute and non-convergence handling
// as the maximum-Sharpe variant; the objective is the variance quadratic
// form directly (minimising variance minimises volatility).
func (o *MinVolatilityOptimiser) Optimise(tickers []string, m *Moments) (*PortfolioResult, error) {
	n := m.NumAssets()
	if n == 0 {
		return nil, domain.OptimisationError{Objective: "min-volatility", Err: fmt.Errorf("no instruments provided")}
	}
	if len(tickers) != n {
		return nil, domain.OptimisationError{
			Objective: "min-volatility",
			Err:       fmt.Errorf("%d tickers for %d return columns", len(tickers), n),
		}
	}

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

			var variance float64
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * m.sigma.At(i, j)
				}
			}

			return variance + sumPenalty(w)
		},
		Grad: func(grad, x []float64) {
			w := projectToUnitBox(x)

			for i := 0; i < n; i++ {
				grad[i] = 0
				for j := 0; j < n; j++ {
					grad[i] += 2 * m.sigma.At(i, j) * w[j]
				}
			}

			addSumPenaltyGradient(grad, w)
		},
	}

	x, converged, err := solve(problem, n)
	if err != nil {
		return nil, domain.OptimisationError{Objective: "min-volatility", Err: err}
	}

	weights := roundWeights(normaliseWeights(x), 3)

	return &PortfolioResult{
		Tickers:             tickers,
		Weights:             weights,
		Converged:           converged,
		PortfolioStatistics: m.Statistics(weights),
	}, nil
}
