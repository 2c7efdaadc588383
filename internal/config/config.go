package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mwolff/settlex/internal/domain"
)

// Config holds all runtime configuration for the settlement market server.
type Config struct {
	Port               int
	LogLevel           string
	SettlementCurrency domain.Currency
	PeriodInterval     time.Duration
	StatsDBPath        string

	PricingInitialPrice      float64
	PricingIncrement         float64
	PricingImplicitIncrement float64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	currency := domain.Currency(getStr("SETTLEMENT_CURRENCY", string(domain.CurrencyEUR)))
	if !currency.Valid() {
		return nil, fmt.Errorf("invalid SETTLEMENT_CURRENCY: %q", currency)
	}

	periodInterval, err := getDuration("PERIOD_INTERVAL", 1*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid PERIOD_INTERVAL: %w", err)
	}

	statsDBPath := getStr("STATS_DB_PATH", "settlex-stats.db")

	initialPrice, err := getFloat("PRICING_INITIAL_PRICE", 1.0)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICING_INITIAL_PRICE: %w", err)
	}
	if initialPrice < 0 {
		return nil, fmt.Errorf("invalid PRICING_INITIAL_PRICE: must be >= 0")
	}

	increment, err := getFloat("PRICING_INCREMENT", 0.1)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICING_INCREMENT: %w", err)
	}
	if increment <= 0 || increment >= 1 {
		return nil, fmt.Errorf("invalid PRICING_INCREMENT: must be in (0, 1)")
	}

	implicitIncrement, err := getFloat("PRICING_IMPLICIT_INCREMENT", 0.001)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICING_IMPLICIT_INCREMENT: %w", err)
	}
	if implicitIncrement < 0 || implicitIncrement >= 1 {
		return nil, fmt.Errorf("invalid PRICING_IMPLICIT_INCREMENT: must be in [0, 1)")
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:                     port,
		LogLevel:                 logLevel,
		SettlementCurrency:       currency,
		PeriodInterval:           periodInterval,
		StatsDBPath:              statsDBPath,
		PricingInitialPrice:      initialPrice,
		PricingIncrement:         increment,
		PricingImplicitIncrement: implicitIncrement,
		ReadTimeout:              readTimeout,
		WriteTimeout:             writeTimeout,
		IdleTimeout:              idleTimeout,
		ShutdownTimeout:          shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
