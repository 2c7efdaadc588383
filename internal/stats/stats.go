// Package stats provides the statistics collaborator. The core reports
// market ticks and price decisions here and never reads anything back.
package stats

import (
	"log/slog"

	"github.com/mwolff/settlex/internal/domain"
)

// Recorder receives observability events from the market core and the
// pricing controllers.
type Recorder interface {
	// MarketTick records one settled trade portion of a continuously
	// priced commodity (goods and currency lots; never property).
	MarketTick(price float64, commodity domain.Commodity, currency domain.Currency, amount float64)

	// PriceDecision records one pricing-controller decision. The seller is
	// passed explicitly; there is no ambient "selected agent" state.
	PriceDecision(seller domain.AgentID, cause string, delta float64)
}

// Log is a Recorder that emits structured log lines.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Recorder logging through the given slog logger.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) MarketTick(price float64, commodity domain.Commodity, currency domain.Currency, amount float64) {
	l.logger.Debug("market tick",
		slog.String("commodity", commodity.String()),
		slog.String("currency", string(currency)),
		slog.Float64("price", price),
		slog.Float64("amount", amount),
	)
}

func (l *Log) PriceDecision(seller domain.AgentID, cause string, delta float64) {
	l.logger.Debug("price decision",
		slog.String("seller", string(seller)),
		slog.String("cause", cause),
		slog.Float64("delta", delta),
	)
}

// Tee fans recorder events out to multiple recorders.
type Tee []Recorder

func (t Tee) MarketTick(price float64, commodity domain.Commodity, currency domain.Currency, amount float64) {
	for _, r := range t {
		r.MarketTick(price, commodity, currency, amount)
	}
}

func (t Tee) PriceDecision(seller domain.AgentID, cause string, delta float64) {
	for _, r := range t {
		r.PriceDecision(seller, cause, delta)
	}
}

// Nop is a Recorder that discards all events. Used in tests and wherever
// observability is disabled.
type Nop struct{}

func (Nop) MarketTick(float64, domain.Commodity, domain.Currency, float64) {}

func (Nop) PriceDecision(domain.AgentID, string, float64) {}
