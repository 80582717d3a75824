// Package handlers provides HTTP handlers for the optimisation core.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
	"github.com/TomAston1996/portfolio-optimiser/internal/modules/optimization"
)

const dateLayout = "2006-01-02"

// Handler handles optimisation HTTP requests
type Handler struct {
	service *optimization.OptimiserService
	log     zerolog.Logger
}

// NewHandler creates a new optimisation handler
func NewHandler(service *optimization.OptimiserService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "optimizer").Logger(),
	}
}

// optimiseRequest is the shared request body of all optimiser endpoints.
type optimiseRequest struct {
	Tickers   []string `json:"tickers"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

func (r *optimiseRequest) parse() ([]string, time.Time, time.Time, error) {
	tickers := make([]string, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		return nil, time.Time{}, time.Time{}, errors.New("at least one ticker is required")
	}

	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return nil, time.Time{}, time.Time{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return nil, time.Time{}, time.Time{}, errors.New("end_date must be YYYY-MM-DD")
	}
	if !end.After(start) {
		return nil, time.Time{}, time.Time{}, errors.New("end_date must be after start_date")
	}

	return tickers, start, end, nil
}

// HandleMaxSharpe runs the maximum-Sharpe optimisation
func (h *Handler) HandleMaxSharpe(w http.ResponseWriter, r *http.Request) {
	tickers, start, end, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.OptimiseMaxSharpe(r.Context(), tickers, start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeResult(w, result)
}

// HandleMinVolatility runs the minimum-volatility optimisation
func (h *Handler) HandleMinVolatility(w http.ResponseWriter, r *http.Request) {
	tickers, start, end, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.OptimiseMinVolatility(r.Context(), tickers, start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeResult(w, result)
}

// HandleFrontier samples the Monte-Carlo frontier cloud
func (h *Handler) HandleFrontier(w http.ResponseWriter, r *http.Request) {
	tickers, start, end, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	rm, err := h.service.ComputeLogReturns(r.Context(), tickers, start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	cloud, err := h.service.SampleFrontier(tickers, rm)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":       uuid.NewString(),
		"tickers":      tickers,
		"simulations":  len(cloud.Returns),
		"returns":      cloud.Returns,
		"volatilities": cloud.Volatilities,
	})
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) ([]string, time.Time, time.Time, bool) {
	var req optimiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, time.Time{}, time.Time{}, false
	}

	tickers, start, end, err := req.parse()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return nil, time.Time{}, time.Time{}, false
	}

	return tickers, start, end, true
}

func (h *Handler) writeResult(w http.ResponseWriter, result *optimization.PortfolioResult) {
	weights := make(map[string]float64, len(result.Tickers))
	for i, ticker := range result.Tickers {
		weights[ticker] = result.Weights[i]
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":              uuid.NewString(),
		"tickers":             result.Tickers,
		"weights":             weights,
		"expected_return":     result.ExpectedReturn,
		"expected_volatility": result.Volatility,
		"sharpe_ratio":        result.SharpeRatio,
		"converged":           result.Converged,
	})
}

// writeDomainError maps the core error taxonomy onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var (
		unavailable  domain.DataUnavailableError
		invalidPrice domain.InvalidPriceError
		insufficient domain.InsufficientDataError
		optFailed    domain.OptimisationError
	)

	switch {
	case errors.As(err, &unavailable):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalidPrice), errors.As(err, &insufficient):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &optFailed):
		h.log.Error().Err(err).Msg("Optimisation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
