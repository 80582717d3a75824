package optimization

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Shared solver plumbing for the two optimiser variants. Both solve
//
//	minimise f(w)  subject to  sum(w) = 1,  0 <= w_i <= 1
//
// via a quadratic penalty on the sum constraint and projection of the
// iterate onto the [0,1] box, seeded from the equal-weight vector.
const sumPenaltyWeight = 1000.0

// convergedStatuses are the solver statuses treated as formal convergence.
var convergedStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.GradientThreshold:   true,
	optimize.FunctionConvergence: true,
}

// equalWeights returns the [1/n, ..., 1/n] starting point.
func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

// projectToUnitBox clamps every component to [0, 1].
func projectToUnitBox(x []float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(0.0, math.Min(1.0, x[i]))
	}
	return proj
}

// normaliseWeights projects to the box and rescales so the components sum
// to 1.
func normaliseWeights(x []float64) []float64 {
	proj := projectToUnitBox(x)
	var sum float64
	for _, v := range proj {
		sum += v
	}
	w := make([]float64, len(proj))
	for i := range proj {
		w[i] = proj[i] / math.Max(sum, 1e-10)
	}
	return w
}

// roundWeights rounds every component to the given number of decimals.
// The statistics reported for a result are recomputed from the rounded
// weights, so they describe the portfolio a caller would actually hold.
func roundWeights(x []float64, decimals int) WeightVector {
	scale := math.Pow(10, float64(decimals))
	w := make(WeightVector, len(x))
	for i := range x {
		w[i] = math.Round(x[i]*scale) / scale
	}
	return w
}

// sumPenalty is the quadratic penalty term for the sum-to-one constraint.
func sumPenalty(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sumPenaltyWeight * (sum - 1.0) * (sum - 1.0)
}

// addSumPenaltyGradient adds the penalty gradient in place.
func addSumPenaltyGradient(grad, x []float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	for i := range grad {
		grad[i] += 2 * sumPenaltyWeight * (sum - 1.0)
	}
}

// solve runs the minimisation from the equal-weight seed, trying BFGS
// first and falling back to Nelder-Mead when BFGS errors out. It returns
// the final iterate and whether the solver formally converged; the caller
// decides the non-convergence policy.
func solve(problem optimize.Problem, n int) ([]float64, bool, error) {
	initial := equalWeights(n)

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err != nil {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
		if err != nil {
			return nil, false, err
		}
	}

	return result.X, convergedStatuses[result.Status], nil
}
