package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwolff/settlex/internal/bank"
	"github.com/mwolff/settlex/internal/clock"
	"github.com/mwolff/settlex/internal/config"
	"github.com/mwolff/settlex/internal/handler"
	"github.com/mwolff/settlex/internal/market"
	"github.com/mwolff/settlex/internal/pricing"
	"github.com/mwolff/settlex/internal/register"
	"github.com/mwolff/settlex/internal/service"
	"github.com/mwolff/settlex/internal/stats"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Statistics: structured log lines plus the sqlite tick store.
	store, err := stats.OpenStore(cfg.StatsDBPath)
	if err != nil {
		logger.Error("failed to open stats store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	recorder := stats.Tee{stats.NewLog(logger), store}

	// Core collaborators.
	b := bank.New()
	reg := register.New()
	mkt := market.New(cfg.SettlementCurrency, b, reg, recorder, logger)

	// Period clock driving the pricing behaviours.
	clk := clock.New(cfg.PeriodInterval, logger)
	clk.Start()

	// Services.
	params := pricing.Params{
		DefaultInitialPrice: cfg.PricingInitialPrice,
		ExplicitIncrement:   cfg.PricingIncrement,
		ImplicitIncrement:   cfg.PricingImplicitIncrement,
	}
	agentSvc := service.NewAgentService(b, reg, cfg.SettlementCurrency)
	marketSvc := service.NewMarketService(mkt, agentSvc, clk, params, recorder)

	// Router.
	router := handler.NewRouter(agentSvc, marketSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("currency", string(cfg.SettlementCurrency)),
			slog.Duration("period_interval", cfg.PeriodInterval),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, then the period clock.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := clk.Stop(); err != nil {
		logger.Error("clock stop error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
