package optimization

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
)

// stubProvider serves a canned price table, or a canned error, without any
// network access.
type stubProvider struct {
	table *domain.PriceTable
	err   error
}

func (s *stubProvider) GetHistoricalPrices(
	_ context.Context,
	tickers []string,
	_ domain.PriceField,
	start, end time.Time,
) (*domain.PriceTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

func newTestService(provider domain.MarketDataProvider) *OptimiserService {
	return NewOptimiserService(provider, ServiceConfig{
		PeriodsPerYear: 252,
		Simulations:    200,
		RandomSeed:     42,
	}, zerolog.Nop())
}

func testRange() (time.Time, time.Time) {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestService_ComputeLogReturns(t *testing.T) {
	table := priceTable([]string{"AAA", "BBB"}, [][]float64{
		{100.0, 200.0},
		{102.0, 198.0},
		{101.0, 205.0},
	})
	svc := newTestService(&stubProvider{table: table})
	start, end := testRange()

	rm, err := svc.ComputeLogReturns(context.Background(), []string{"AAA", "BBB"}, start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, rm.NumPeriods())
	assert.Equal(t, 2, rm.NumAssets())
}

func TestService_ComputeLogReturns_NoTickers(t *testing.T) {
	svc := newTestService(&stubProvider{})
	start, end := testRange()

	_, err := svc.ComputeLogReturns(context.Background(), nil, start, end)
	assert.Error(t, err)
}

func TestService_ProviderErrorPropagatesUnchanged(t *testing.T) {
	start, end := testRange()
	wantErr := domain.DataUnavailableError{Tickers: []string{"AAA"}, Start: start, End: end}
	svc := newTestService(&stubProvider{err: wantErr})

	_, err := svc.OptimiseMaxSharpe(context.Background(), []string{"AAA"}, start, end)
	require.Error(t, err)

	var unavailable domain.DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, wantErr, unavailable)
}

func TestService_OptimiseEndToEnd(t *testing.T) {
	table := priceTable([]string{"AAA", "BBB"}, [][]float64{
		{100.0, 200.0},
		{103.0, 197.0},
		{101.0, 204.0},
		{106.0, 199.0},
		{104.0, 206.0},
		{109.0, 202.0},
	})
	svc := newTestService(&stubProvider{table: table})
	start, end := testRange()

	sharpe, err := svc.OptimiseMaxSharpe(context.Background(), []string{"AAA", "BBB"}, start, end)
	require.NoError(t, err)
	assertFeasible(t, sharpe, 2)

	minVol, err := svc.OptimiseMinVolatility(context.Background(), []string{"AAA", "BBB"}, start, end)
	require.NoError(t, err)
	assertFeasible(t, minVol, 2)

	assert.LessOrEqual(t, minVol.Volatility, sharpe.Volatility+1e-3,
		"no feasible portfolio is less volatile than the minimum-volatility one")
}

func TestService_SampleFrontier(t *testing.T) {
	table := priceTable([]string{"AAA", "BBB"}, [][]float64{
		{100.0, 200.0},
		{103.0, 197.0},
		{101.0, 204.0},
		{106.0, 199.0},
	})
	svc := newTestService(&stubProvider{table: table})
	start, end := testRange()

	rm, err := svc.ComputeLogReturns(context.Background(), []string{"AAA", "BBB"}, start, end)
	require.NoError(t, err)

	cloud, err := svc.SampleFrontier([]string{"AAA", "BBB"}, rm)
	require.NoError(t, err)
	assert.Len(t, cloud.Returns, 200)
	assert.Len(t, cloud.Volatilities, 200)

	// A fixed seed makes repeated runs identical.
	again, err := svc.SampleFrontier([]string{"AAA", "BBB"}, rm)
	require.NoError(t, err)
	assert.Equal(t, cloud.Returns, again.Returns)

	_, err = svc.SampleFrontier([]string{"AAA"}, rm)
	assert.Error(t, err, "ticker count must match return columns")
}
