// Package charts renders optimisation output as PNG images.
package charts

import (
	"errors"
	"fmt"
	"sort"

	charts "github.com/vicanso/go-charts/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/TomAston1996/portfolio-optimiser/internal/modules/optimization"
	"github.com/rs/zerolog"
)

// Renderer is the plotting capability consumed by the HTTP layer. Any
// implementation (image library, test double) is substitutable.
type Renderer interface {
	EfficientFrontier(cloud *optimization.SimulationCloud, maxSharpe, minVol *optimization.PortfolioResult) ([]byte, error)
	LogReturns(rm *optimization.ReturnMatrix) ([]byte, error)
}

// Service implements Renderer using go-charts.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new chart service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "charts").Logger(),
	}
}

// EfficientFrontier renders the upper envelope of the Monte-Carlo cloud
// with the two optimal portfolios summarised in the subtitle.
func (s *Service) EfficientFrontier(
	cloud *optimization.SimulationCloud,
	maxSharpe, minVol *optimization.PortfolioResult,
) ([]byte, error) {
	if cloud == nil || len(cloud.Returns) == 0 {
		return nil, errors.New("empty simulation cloud")
	}
	if len(cloud.Returns) != len(cloud.Volatilities) {
		return nil, errors.New("mismatched cloud lengths")
	}

	type point struct{ vol, ret float64 }
	points := make([]point, len(cloud.Returns))
	for i := range cloud.Returns {
		points[i] = point{vol: cloud.Volatilities[i], ret: cloud.Returns[i]}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].vol < points[j].vol })

	// Upper envelope: for each volatility level, the best return seen so
	// far approximates the frontier boundary.
	xLabels := make([]string, len(points))
	envelope := make([]float64, len(points))
	best := points[0].ret
	for i, p := range points {
		if p.ret > best {
			best = p.ret
		}
		xLabels[i] = fmt.Sprintf("%.3f", p.vol)
		envelope[i] = best
	}

	subtitle := fmt.Sprintf("max sharpe %.2f (vol %.3f) / min vol %.3f (ret %.3f)",
		maxSharpe.SharpeRatio, maxSharpe.Volatility, minVol.Volatility, minVol.ExpectedReturn)

	painter, err := charts.LineRender(
		[][]float64{envelope},
		charts.TitleTextOptionFunc("Efficient Frontier", subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: 10,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}

	return painter.Bytes()
}

// LogReturns renders one line per ticker over the shared date index.
func (s *Service) LogReturns(rm *optimization.ReturnMatrix) ([]byte, error) {
	if rm == nil || rm.NumPeriods() == 0 {
		return nil, errors.New("empty return matrix")
	}

	xLabels := make([]string, len(rm.Dates))
	for i, d := range rm.Dates {
		xLabels[i] = d.Format("2006-01-02")
	}

	series := make([][]float64, rm.NumAssets())
	for i := range series {
		series[i] = mat.Col(nil, i, rm.Data)
	}

	painter, err := charts.LineRender(
		series,
		charts.TitleTextOptionFunc("Log Returns Over Time"),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: 8,
		}),
		charts.LegendOptionFunc(charts.LegendOption{Data: rm.Tickers}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render log-returns chart: %w", err)
	}

	return painter.Bytes()
}
