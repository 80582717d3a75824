// Package yahoo implements the market data provider contract against the
// Yahoo Finance v8 chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client is a Yahoo Finance API client
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return NewClientWithBaseURL(defaultBaseURL, log)
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Used by tests to point at an httptest server.
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// GetHistoricalPrices fetches daily prices for every ticker and aligns them
// on their common trading days. The result is always a table, one column
// per ticker, even when a single ticker is requested.
func (c *Client) GetHistoricalPrices(
	ctx context.Context,
	tickers []string,
	field domain.PriceField,
	start, end time.Time,
) (*domain.PriceTable, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers provided")
	}

	// Per-ticker date -> price maps, plus the date order of the first
	// ticker so aligned rows come out chronologically.
	series := make([]map[string]float64, len(tickers))
	var firstDates []string

	for i, ticker := range tickers {
		timestamps, values, err := c.fetchDaily(ctx, ticker, field, start, end)
		if err != nil {
			return nil, err
		}

		byDate := make(map[string]float64, len(timestamps))
		for j, ts := range timestamps {
			if j >= len(values) {
				break
			}
			day := time.Unix(ts, 0).UTC().Format("2006-01-02")
			byDate[day] = values[j]
			if i == 0 {
				firstDates = append(firstDates, day)
			}
		}
		series[i] = byDate
	}

	// Inner join on trading date across all tickers.
	common := make([]string, 0, len(firstDates))
	for _, day := range firstDates {
		present := true
		for _, byDate := range series[1:] {
			if _, ok := byDate[day]; !ok {
				present = false
				break
			}
		}
		if present {
			common = append(common, day)
		}
	}
	sort.Strings(common)

	if len(common) == 0 {
		return nil, domain.DataUnavailableError{Tickers: tickers, Start: start, End: end}
	}

	table := &domain.PriceTable{
		Tickers: tickers,
		Dates:   make([]time.Time, len(common)),
		Prices:  make([][]float64, len(common)),
	}
	for r, day := range common {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trading date %q: %w", day, err)
		}
		table.Dates[r] = date
		row := make([]float64, len(tickers))
		for i := range tickers {
			row[i] = series[i][day]
		}
		table.Prices[r] = row
	}

	c.log.Debug().
		Int("tickers", len(tickers)).
		Int("rows", len(common)).
		Str("field", string(field)).
		Msg("Fetched aligned price table")

	return table, nil
}

// fetchDaily fetches one ticker's daily series for the given field.
func (c *Client) fetchDaily(
	ctx context.Context,
	ticker string,
	field domain.PriceField,
	start, end time.Time,
) ([]int64, []float64, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		c.baseURL, url.PathEscape(strings.ToUpper(strings.TrimSpace(ticker))), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request for %s: %w", ticker, err)
	}
	req.Header.Set("User-Agent", "portfolio-optimiser/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, domain.DataUnavailableError{Tickers: []string{ticker}, Start: start, End: end}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("yahoo returned HTTP %d for %s", resp.StatusCode, ticker)
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode chart response for %s: %w", ticker, err)
	}

	if len(raw.Chart.Result) == 0 {
		return nil, nil, domain.DataUnavailableError{Tickers: []string{ticker}, Start: start, End: end}
	}

	result := raw.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, nil, domain.DataUnavailableError{Tickers: []string{ticker}, Start: start, End: end}
	}

	quote := result.Indicators.Quote[0]
	var values []float64
	switch field {
	case domain.FieldOpen:
		values = quote.Open
	case domain.FieldHigh:
		values = quote.High
	case domain.FieldLow:
		values = quote.Low
	case domain.FieldClose:
		values = quote.Close
	case domain.FieldVolume:
		values = quote.Volume
	case domain.FieldAdjClose:
		if len(result.Indicators.AdjClose) > 0 {
			values = result.Indicators.AdjClose[0].AdjClose
		} else {
			// Some listings omit the adjclose block; close is already
			// adjusted for those.
			values = quote.Close
		}
	default:
		return nil, nil, fmt.Errorf("unknown price field %q", field)
	}

	if len(values) == 0 {
		return nil, nil, domain.DataUnavailableError{Tickers: []string{ticker}, Start: start, End: end}
	}

	return result.Timestamp, values, nil
}
