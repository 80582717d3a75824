package charts

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/TomAston1996/portfolio-optimiser/internal/modules/optimization"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testResult(ret, vol, sharpe float64) *optimization.PortfolioResult {
	return &optimization.PortfolioResult{
		Tickers:   []string{"AAA", "BBB"},
		Weights:   optimization.WeightVector{0.6, 0.4},
		Converged: true,
		PortfolioStatistics: optimization.PortfolioStatistics{
			ExpectedReturn: ret,
			Volatility:     vol,
			SharpeRatio:    sharpe,
		},
	}
}

func TestEfficientFrontier_RendersPNG(t *testing.T) {
	cloud := &optimization.SimulationCloud{
		Returns:      []float64{0.08, 0.12, 0.10, 0.15, 0.09},
		Volatilities: []float64{0.20, 0.25, 0.18, 0.30, 0.22},
	}

	img, err := NewService(zerolog.Nop()).EfficientFrontier(cloud,
		testResult(0.15, 0.30, 0.5), testResult(0.09, 0.18, 0.5))
	require.NoError(t, err)
	require.NotEmpty(t, img)
	assert.Equal(t, pngMagic, img[:4])
}

func TestEfficientFrontier_RejectsBadCloud(t *testing.T) {
	svc := NewService(zerolog.Nop())
	maxSharpe := testResult(0.15, 0.30, 0.5)
	minVol := testResult(0.09, 0.18, 0.5)

	_, err := svc.EfficientFrontier(nil, maxSharpe, minVol)
	assert.Error(t, err)

	_, err = svc.EfficientFrontier(&optimization.SimulationCloud{}, maxSharpe, minVol)
	assert.Error(t, err)

	_, err = svc.EfficientFrontier(&optimization.SimulationCloud{
		Returns:      []float64{0.1, 0.2},
		Volatilities: []float64{0.1},
	}, maxSharpe, minVol)
	assert.Error(t, err)
}

func TestLogReturns_RendersPNG(t *testing.T) {
	dates := make([]time.Time, 4)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	rm := &optimization.ReturnMatrix{
		Tickers: []string{"AAA", "BBB"},
		Dates:   dates,
		Data: mat.NewDense(4, 2, []float64{
			0.01, -0.02,
			-0.005, 0.015,
			0.02, 0.01,
			-0.01, -0.005,
		}),
	}

	img, err := NewService(zerolog.Nop()).LogReturns(rm)
	require.NoError(t, err)
	require.NotEmpty(t, img)
	assert.Equal(t, pngMagic, img[:4])
}

func TestLogReturns_RejectsEmptyMatrix(t *testing.T) {
	_, err := NewService(zerolog.Nop()).LogReturns(nil)
	assert.Error(t, err)
}
