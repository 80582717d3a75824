package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
	"github.com/TomAston1996/portfolio-optimiser/internal/modules/optimization"
)

type stubProvider struct {
	table *domain.PriceTable
	err   error
}

func (s *stubProvider) GetHistoricalPrices(
	_ context.Context,
	_ []string,
	_ domain.PriceField,
	_, _ time.Time,
) (*domain.PriceTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

func testTable() *domain.PriceTable {
	dates := make([]time.Time, 6)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return &domain.PriceTable{
		Tickers: []string{"AAA", "BBB"},
		Dates:   dates,
		Prices: [][]float64{
			{100.0, 200.0},
			{103.0, 197.0},
			{101.0, 204.0},
			{106.0, 199.0},
			{104.0, 206.0},
			{109.0, 202.0},
		},
	}
}

func newTestRouter(provider domain.MarketDataProvider) *chi.Mux {
	service := optimization.NewOptimiserService(provider, optimization.ServiceConfig{
		PeriodsPerYear: 252,
		Simulations:    50,
		RandomSeed:     1,
	}, zerolog.Nop())

	r := chi.NewRouter()
	NewHandler(service, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validRequest() map[string]interface{} {
	return map[string]interface{}{
		"tickers":    []string{"aaa", " bbb "},
		"start_date": "2024-01-01",
		"end_date":   "2024-06-01",
	}
}

func TestHandleMaxSharpe_Success(t *testing.T) {
	router := newTestRouter(&stubProvider{table: testTable()})

	rec := postJSON(t, router, "/optimizer/max-sharpe", validRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RunID    string             `json:"run_id"`
		Tickers  []string           `json:"tickers"`
		Weights  map[string]float64 `json:"weights"`
		Sharpe   float64            `json:"sharpe_ratio"`
		ExpRet   float64            `json:"expected_return"`
		ExpVol   float64            `json:"expected_volatility"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"AAA", "BBB"}, resp.Tickers, "tickers are upper-cased and trimmed")
	require.Len(t, resp.Weights, 2)

	sum := 0.0
	for _, w := range resp.Weights {
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 2e-3)
}

func TestHandleMinVolatility_Success(t *testing.T) {
	router := newTestRouter(&stubProvider{table: testTable()})

	rec := postJSON(t, router, "/optimizer/min-volatility", validRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "weights")
	assert.Contains(t, resp, "expected_volatility")
	assert.Contains(t, resp, "converged")
}

func TestHandleFrontier_Success(t *testing.T) {
	router := newTestRouter(&stubProvider{table: testTable()})

	rec := postJSON(t, router, "/optimizer/frontier", validRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Simulations  int       `json:"simulations"`
		Returns      []float64 `json:"returns"`
		Volatilities []float64 `json:"volatilities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 50, resp.Simulations)
	assert.Len(t, resp.Returns, 50)
	assert.Len(t, resp.Volatilities, 50)
}

func TestHandlers_BadRequests(t *testing.T) {
	router := newTestRouter(&stubProvider{table: testTable()})

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no tickers", map[string]interface{}{
			"tickers": []string{}, "start_date": "2024-01-01", "end_date": "2024-06-01",
		}},
		{"blank tickers", map[string]interface{}{
			"tickers": []string{" ", ""}, "start_date": "2024-01-01", "end_date": "2024-06-01",
		}},
		{"bad start date", map[string]interface{}{
			"tickers": []string{"AAA"}, "start_date": "01/01/2024", "end_date": "2024-06-01",
		}},
		{"end before start", map[string]interface{}{
			"tickers": []string{"AAA"}, "start_date": "2024-06-01", "end_date": "2024-01-01",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/optimizer/max-sharpe", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlers_InvalidJSONBody(t *testing.T) {
	router := newTestRouter(&stubProvider{table: testTable()})

	req := httptest.NewRequest(http.MethodPost, "/optimizer/max-sharpe", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_DataUnavailableMapsTo404(t *testing.T) {
	router := newTestRouter(&stubProvider{err: domain.DataUnavailableError{
		Tickers: []string{"AAA"},
		Start:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}})

	rec := postJSON(t, router, "/optimizer/max-sharpe", validRequest())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_InvalidPriceMapsTo422(t *testing.T) {
	table := testTable()
	table.Prices[2][1] = 0.0

	router := newTestRouter(&stubProvider{table: table})
	rec := postJSON(t, router, "/optimizer/min-volatility", validRequest())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlers_InsufficientDataMapsTo422(t *testing.T) {
	table := testTable()
	table.Dates = table.Dates[:1]
	table.Prices = table.Prices[:1]

	router := newTestRouter(&stubProvider{table: table})
	rec := postJSON(t, router, "/optimizer/frontier", validRequest())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
