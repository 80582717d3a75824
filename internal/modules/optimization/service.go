package optimization

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
)

// ServiceConfig holds the immutable configuration shared by all requests.
type ServiceConfig struct {
	PeriodsPerYear int   // annualisation factor A
	Simulations    int   // Monte-Carlo draws per frontier request
	RandomSeed     int64 // 0 means time-seeded per call
}

// OptimiserService wires the market data provider to the optimisation
// core. It holds no mutable state across calls, so independent requests
// may run concurrently against the same instance.
type OptimiserService struct {
	marketData domain.MarketDataProvider
	cfg        ServiceConfig
	returns    *ReturnsCalculator
	sharpe     *MaxSharpeOptimiser
	minVol     *MinVolatilityOptimiser
	log        zerolog.Logger
}

// NewOptimiserService creates a new optimiser service.
func NewOptimiserService(marketData domain.MarketDataProvider, cfg ServiceConfig, log zerolog.Logger) *OptimiserService {
	if cfg.PeriodsPerYear < 1 {
		cfg.PeriodsPerYear = 252
	}
	return &OptimiserService{
		marketData: marketData,
		cfg:        cfg,
		returns:    NewReturnsCalculator(),
		sharpe:     NewMaxSharpeOptimiser(),
		minVol:     NewMinVolatilityOptimiser(),
		log:        log.With().Str("component", "optimiser").Logger(),
	}
}

// ComputeLogReturns fetches adjusted close prices for the tickers and date
// range and converts them into a log-return matrix. Provider errors
// (notably DataUnavailableError) propagate unchanged.
func (s *OptimiserService) ComputeLogReturns(
	ctx context.Context,
	tickers []string,
	start, end time.Time,
) (*ReturnMatrix, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers provided")
	}

	table, err := s.marketData.GetHistoricalPrices(ctx, tickers, domain.FieldAdjClose, start, end)
	if err != nil {
		return nil, err
	}

	return s.returns.LogReturns(table)
}

// OptimiseMaxSharpe derives the Sharpe-maximising allocation for the
// tickers over the date range.
func (s *OptimiserService) OptimiseMaxSharpe(
	ctx context.Context,
	tickers []string,
	start, end time.Time,
) (*PortfolioResult, error) {
	rm, err := s.ComputeLogReturns(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}

	result, err := s.sharpe.Optimise(tickers, NewMoments(rm, s.cfg.PeriodsPerYear))
	if err != nil {
		return nil, err
	}

	s.logResult("max-sharpe", result)
	return result, nil
}

// OptimiseMinVolatility derives the volatility-minimising allocation for
// the tickers over the date range.
func (s *OptimiserService) OptimiseMinVolatility(
	ctx context.Context,
	tickers []string,
	start, end time.Time,
) (*PortfolioResult, error) {
	rm, err := s.ComputeLogReturns(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}

	result, err := s.minVol.Optimise(tickers, NewMoments(rm, s.cfg.PeriodsPerYear))
	if err != nil {
		return nil, err
	}

	s.logResult("min-volatility", result)
	return result, nil
}

// SampleFrontier draws the configured number of random portfolios over the
// return matrix and evaluates their annualised statistics. Each call uses
// its own generator, so concurrent requests never share randomness.
func (s *OptimiserService) SampleFrontier(tickers []string, rm *ReturnMatrix) (*SimulationCloud, error) {
	if len(tickers) != rm.NumAssets() {
		return nil, fmt.Errorf("%d tickers for %d return columns", len(tickers), rm.NumAssets())
	}

	sampler := NewMonteCarloSampler(s.cfg.Simulations, s.newRand())
	return sampler.Sample(NewMoments(rm, s.cfg.PeriodsPerYear))
}

// newRand builds a per-call generator: fixed seed for reproducible runs
// when configured, otherwise time-seeded.
func (s *OptimiserService) newRand() *rand.Rand {
	seed := s.cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (s *OptimiserService) logResult(objective string, result *PortfolioResult) {
	s.log.Info().
		Str("objective", objective).
		Int("num_assets", len(result.Tickers)).
		Float64("expected_return", result.ExpectedReturn).
		Float64("expected_volatility", result.Volatility).
		Float64("sharpe_ratio", result.SharpeRatio).
		Bool("converged", result.Converged).
		Msg("Optimisation complete")
}
