package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/sim"
	"github.com/mwolff/settlex/internal/stats"
)

func main() {
	var (
		firms      = flag.Int("firms", 3, "number of selling firms")
		households = flag.Int("households", 12, "number of buying households")
		periods    = flag.Int("periods", 50, "number of periods to simulate")
		good       = flag.String("good", string(domain.GoodWheat), "good type to trade")
		seed       = flag.Int64("seed", 0, "demand noise seed (0 = random)")
		statsDB    = flag.String("stats-db", "", "optional sqlite file for tick and decision records")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg := sim.DefaultConfig()
	cfg.Firms = *firms
	cfg.Households = *households
	cfg.Periods = *periods
	cfg.Good = domain.GoodType(*good)
	cfg.Seed = *seed
	cfg.Logger = logger

	if *statsDB != "" {
		store, err := stats.OpenStore(*statsDB)
		if err != nil {
			logger.Error("failed to open stats store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer store.Close()
		cfg.Recorder = store
	}

	report, err := sim.Run(cfg)
	if err != nil {
		logger.Error("simulation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("period  avg_price  traded  spent\n")
	for _, p := range report.Periods {
		fmt.Printf("%6d  %9s  %6s  %s\n",
			p.Period,
			humanize.CommafWithDigits(p.AvgPrice, 4),
			humanize.CommafWithDigits(p.AmountTraded, 2),
			humanize.CommafWithDigits(p.MoneySpent, 2),
		)
	}
	fmt.Printf("\nfinal prices:\n")
	for firm, price := range report.FinalPrices {
		fmt.Printf("  %s: %s\n", firm, humanize.CommafWithDigits(price, 4))
	}
}
