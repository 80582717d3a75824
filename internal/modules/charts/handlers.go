package charts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/TomAston1996/portfolio-optimiser/internal/domain"
	"github.com/TomAston1996/portfolio-optimiser/internal/modules/optimization"
)

const dateLayout = "2006-01-02"

// Handler serves rendered charts over HTTP
type Handler struct {
	renderer Renderer
	service  *optimization.OptimiserService
	log      zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(renderer Renderer, service *optimization.OptimiserService, log zerolog.Logger) *Handler {
	return &Handler{
		renderer: renderer,
		service:  service,
		log:      log.With().Str("handler", "charts").Logger(),
	}
}

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/frontier", h.HandleFrontierChart)      // Frontier envelope PNG
		r.Get("/log-returns", h.HandleLogReturnsChart) // Per-ticker log-return lines PNG
	})
}

// HandleFrontierChart renders the efficient frontier for the query params
func (h *Handler) HandleFrontierChart(w http.ResponseWriter, r *http.Request) {
	tickers, start, end, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	rm, err := h.service.ComputeLogReturns(ctx, tickers, start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	cloud, err := h.service.SampleFrontier(tickers, rm)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	maxSharpe, err := h.service.OptimiseMaxSharpe(ctx, tickers, start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	minVol, err := h.service.OptimiseMinVolatility(ctx, tickers, start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	img, err := h.renderer.EfficientFrontier(cloud, maxSharpe, minVol)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writePNG(w, img)
}

// HandleLogReturnsChart renders the per-ticker log-return series
func (h *Handler) HandleLogReturnsChart(w http.ResponseWriter, r *http.Request) {
	tickers, start, end, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	rm, err := h.service.ComputeLogReturns(r.Context(), tickers, start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	img, err := h.renderer.LogReturns(rm)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writePNG(w, img)
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) ([]string, time.Time, time.Time, bool) {
	var tickers []string
	for _, t := range strings.Split(r.URL.Query().Get("tickers"), ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		h.writeError(w, http.StatusBadRequest, "tickers query parameter is required")
		return nil, time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return nil, time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return nil, time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		h.writeError(w, http.StatusBadRequest, "end must be after start")
		return nil, time.Time{}, time.Time{}, false
	}

	return tickers, start, end, true
}

func (h *Handler) writePNG(w http.ResponseWriter, img []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write PNG response")
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var (
		unavailable  domain.DataUnavailableError
		invalidPrice domain.InvalidPriceError
		insufficient domain.InsufficientDataError
	)

	switch {
	case errors.As(err, &unavailable):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalidPrice), errors.As(err, &insufficient):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error().Err(err).Msg("Chart request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
