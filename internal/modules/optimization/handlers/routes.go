package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all optimiser routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/optimizer", func(r chi.Router) {
		r.Post("/max-sharpe", h.HandleMaxSharpe)         // Sharpe-maximising allocation
		r.Post("/min-volatility", h.HandleMinVolatility) // Volatility-minimising allocation
		r.Post("/frontier", h.HandleFrontier)            // Monte-Carlo frontier cloud
	})
}
