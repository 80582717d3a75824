// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults used when the environment does not override them.
const (
	DefaultTradingDaysPerYear = 252
	DefaultNumSimulations     = 4000
)

// Config holds application configuration
type Config struct {
	Port               int
	LogLevel           string
	DevMode            bool
	TradingDaysPerYear int   // annualisation factor A
	NumSimulations     int   // Monte-Carlo draws per frontier request
	RandomSeed         int64 // 0 means time-seeded per call
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	port, err := getEnvInt("OPTIMISER_PORT", 8080)
	if err != nil {
		return nil, err
	}

	tradingDays, err := getEnvInt("OPTIMISER_TRADING_DAYS", DefaultTradingDaysPerYear)
	if err != nil {
		return nil, err
	}
	if tradingDays < 1 {
		return nil, fmt.Errorf("OPTIMISER_TRADING_DAYS must be >= 1, got %d", tradingDays)
	}

	simulations, err := getEnvInt("OPTIMISER_SIMULATIONS", DefaultNumSimulations)
	if err != nil {
		return nil, err
	}
	if simulations < 1 {
		return nil, fmt.Errorf("OPTIMISER_SIMULATIONS must be >= 1, got %d", simulations)
	}

	seed, err := getEnvInt64("OPTIMISER_RANDOM_SEED", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               port,
		LogLevel:           getEnv("OPTIMISER_LOG_LEVEL", "info"),
		DevMode:            getEnv("OPTIMISER_DEV_MODE", "false") == "true",
		TradingDaysPerYear: tradingDays,
		NumSimulations:     simulations,
		RandomSeed:         seed,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
