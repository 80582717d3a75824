// Package main is the entry point for the portfolio optimiser API.
// It wires the Yahoo Finance market data client, the optimisation
// service and the chart renderer behind an HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TomAston1996/portfolio-optimiser/internal/clients/yahoo"
	"github.com/TomAston1996/portfolio-optimiser/internal/config"
	"github.com/TomAston1996/portfolio-optimiser/internal/modules/charts"
	"github.com/TomAston1996/portfolio-optimiser/internal/modules/optimization"
	"github.com/TomAston1996/portfolio-optimiser/internal/server"
	"github.com/TomAston1996/portfolio-optimiser/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting portfolio optimiser")

	marketData := yahoo.NewClient(log)

	optimiser := optimization.NewOptimiserService(marketData, optimization.ServiceConfig{
		PeriodsPerYear: cfg.TradingDaysPerYear,
		Simulations:    cfg.NumSimulations,
		RandomSeed:     cfg.RandomSeed,
	}, log)

	chartService := charts.NewService(log)

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Optimiser: optimiser,
		Charts:    chartService,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
