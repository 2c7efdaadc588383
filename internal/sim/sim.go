// Package sim runs an in-process market scenario: a handful of firms
// selling a good at behaviour-driven prices against households whose
// demand drifts with smooth noise. It exists to exercise the whole
// stack end to end and to watch the pricing feedback loop converge.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/mwolff/settlex/internal/bank"
	"github.com/mwolff/settlex/internal/clock"
	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/market"
	"github.com/mwolff/settlex/internal/pricing"
	"github.com/mwolff/settlex/internal/register"
	"github.com/mwolff/settlex/internal/service"
	"github.com/mwolff/settlex/internal/stats"
)

// Config holds scenario parameters.
type Config struct {
	Firms      int
	Households int
	Periods    int

	Good     domain.GoodType
	Currency domain.Currency

	// Seed drives the demand noise; 0 picks a random seed.
	Seed int64

	// FirmStock is the amount each firm produces and offers per period.
	FirmStock float64

	// HouseholdBudget is the base per-period spending budget of a
	// household; noise modulates it between roughly half and full.
	HouseholdBudget float64

	// HouseholdCash is the opening bank balance of a household.
	HouseholdCash float64

	Pricing  pricing.Params
	Recorder stats.Recorder
	Logger   *slog.Logger
}

// DefaultConfig returns a scenario that converges visibly within its run.
func DefaultConfig() Config {
	return Config{
		Firms:           3,
		Households:      12,
		Periods:         50,
		Good:            domain.GoodWheat,
		Currency:        domain.CurrencyEUR,
		FirmStock:       40,
		HouseholdBudget: 12,
		HouseholdCash:   10_000,
		Pricing:         pricing.DefaultParams(),
		Recorder:        stats.Nop{},
		Logger:          slog.Default(),
	}
}

// PeriodStats summarizes one simulated period.
type PeriodStats struct {
	Period       int
	AvgPrice     float64
	AmountTraded float64
	MoneySpent   float64
}

// Report is the outcome of a scenario run.
type Report struct {
	Periods     []PeriodStats
	FinalPrices map[domain.AgentID]float64
}

// Run executes the scenario and returns the per-period summary.
func Run(cfg Config) (*Report, error) {
	if cfg.Firms < 1 || cfg.Households < 1 || cfg.Periods < 1 {
		return nil, &domain.ValidationError{Message: "firms, households and periods must be >= 1"}
	}
	if !cfg.Good.Valid() {
		return nil, &domain.ValidationError{Message: "unknown good type: " + string(cfg.Good)}
	}
	if !cfg.Currency.Valid() {
		return nil, &domain.ValidationError{Message: "unknown currency: " + string(cfg.Currency)}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = stats.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	demandNoise := opensimplex.NewNormalized(seed)

	b := bank.New()
	reg := register.New()
	mkt := market.New(cfg.Currency, b, reg, cfg.Recorder, cfg.Logger)

	// Periods are advanced manually, so the clock never starts ticking.
	clk := clock.New(0, cfg.Logger)

	agents := service.NewAgentService(b, reg, cfg.Currency)
	markets := service.NewMarketService(mkt, agents, clk, cfg.Pricing, cfg.Recorder)

	good := domain.GoodCommodity(cfg.Good)

	firms := make([]domain.AgentID, cfg.Firms)
	for i := range firms {
		firms[i] = domain.AgentID(fmt.Sprintf("firm-%d", i))
		if _, err := agents.Create(service.CreateAgentRequest{AgentID: firms[i]}); err != nil {
			return nil, err
		}
	}

	households := make([]domain.AgentID, cfg.Households)
	for i := range households {
		households[i] = domain.AgentID(fmt.Sprintf("household-%d", i))
		if _, err := agents.Create(service.CreateAgentRequest{
			AgentID: households[i],
			Cash:    cfg.HouseholdCash,
		}); err != nil {
			return nil, err
		}
	}

	report := &Report{
		Periods:     make([]PeriodStats, 0, cfg.Periods),
		FinalPrices: make(map[domain.AgentID]float64, cfg.Firms),
	}

	for period := 0; period < cfg.Periods; period++ {
		// Firms produce and offer this period's stock at behaviour prices.
		for _, firm := range firms {
			reg.GrantGood(firm, cfg.Good, cfg.FirmStock)
			if _, err := markets.PostOffer(service.PostOfferRequest{
				Seller:    firm,
				Commodity: good,
				Amount:    cfg.FirmStock,
			}); err != nil {
				return nil, err
			}
		}

		// Households spend a noise-modulated budget on the good.
		var traded, spent float64
		for i, hh := range households {
			demand := 0.5 + 0.5*demandNoise.Eval2(float64(period)*0.15, float64(i))
			budget := cfg.HouseholdBudget * demand

			res, err := markets.Buy(service.BuyRequest{
				Buyer:           hh,
				Commodity:       good,
				MaxAmount:       budget,
				MaxTotalPrice:   budget,
				MaxPricePerUnit: 10 * cfg.Pricing.DefaultInitialPrice,
			})
			if err != nil {
				return nil, err
			}
			traded += res.AmountAcquired
			spent += res.MoneySpent
		}

		// Unsold stock comes off the market before the books close.
		for _, firm := range firms {
			if err := markets.Withdraw(firm); err != nil {
				return nil, err
			}
		}

		var priceSum float64
		for _, firm := range firms {
			price, err := markets.CurrentPrice(firm, good)
			if err != nil {
				return nil, err
			}
			priceSum += price
		}

		report.Periods = append(report.Periods, PeriodStats{
			Period:       period,
			AvgPrice:     priceSum / float64(cfg.Firms),
			AmountTraded: traded,
			MoneySpent:   spent,
		})

		clk.AdvanceAll()
	}

	for _, firm := range firms {
		price, err := markets.CurrentPrice(firm, good)
		if err != nil {
			return nil, err
		}
		report.FinalPrices[firm] = price
	}

	return report, nil
}
