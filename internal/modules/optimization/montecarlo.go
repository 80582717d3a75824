package optimization

import (
	"fmt"
	"math/rand"
	"time"
)

// MonteCarloSampler draws random feasible weight vectors and evaluates the
// return/volatility surface, producing the scatter cloud that approximates
// the efficient frontier.
type MonteCarloSampler struct {
	simulations int
	rng         *rand.Rand
}

// NewMonteCarloSampler creates a sampler that draws the given number of
// portfolios. A nil rng falls back to a time-seeded generator; passing an
// explicit generator makes the cloud deterministic.
func NewMonteCarloSampler(simulations int, rng *rand.Rand) *MonteCarloSampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MonteCarloSampler{
		simulations: simulations,
		rng:         rng,
	}
}

// Sample evaluates the annualised return and volatility of randomly drawn
// weight vectors. The result arrays both have length exactly equal to the
// configured simulation count.
func (s *MonteCarloSampler) Sample(m *Moments) (*SimulationCloud, error) {
	if s.simulations < 1 {
		return nil, fmt.Errorf("simulation count must be >= 1, got %d", s.simulations)
	}

	n := m.NumAssets()
	cloud := &SimulationCloud{
		Returns:      make([]float64, s.simulations),
		Volatilities: make([]float64, s.simulations),
	}

	for k := 0; k < s.simulations; k++ {
		w := s.randomWeights(n)
		cloud.Returns[k] = m.AnnualisedReturn(w)
		cloud.Volatilities[k] = m.AnnualisedVolatility(w)
	}

	return cloud, nil
}

// randomWeights draws n uniform(0,1) values and normalises them by their
// sum, yielding a feasible weight vector.
func (s *MonteCarloSampler) randomWeights(n int) []float64 {
	w := make([]float64, n)
	var sum float64
	for i := range w {
		w[i] = s.rng.Float64()
		sum += w[i]
	}
	if sum == 0 {
		for i := range w {
			w[i] = 1.0 / float64(n)
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
