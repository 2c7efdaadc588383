package market

import (
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/mwolff/settlex/internal/domain"
)

// MoneyTransferrer is the banking collaborator. Transfers fail fast with
// one of the domain transfer errors and move nothing on failure.
type MoneyTransferrer interface {
	Transfer(from, to domain.AccountID, amount float64, authorization, memo string) error
}

// OwnershipRegister is the property/inventory collaborator.
type OwnershipRegister interface {
	TransferGood(from, to domain.AgentID, good domain.GoodType, amount float64) error
	TransferProperty(from, to domain.AgentID, id domain.PropertyID) error
}

// Recorder receives market ticks. Consumed write-only; the core never
// reads statistics back.
type Recorder interface {
	MarketTick(price float64, commodity domain.Commodity, currency domain.Currency, amount float64)
}

// Market is a settlement market denominated in a single currency: an order
// book of selling offers plus the matching and settlement machinery that
// transfers money and ownership automatically on purchase.
type Market struct {
	currency domain.Currency
	book     *Book
	bank     MoneyTransferrer
	register OwnershipRegister
	recorder Recorder
	logger   *slog.Logger
}

// New creates a Market settling in the given currency.
func New(
	currency domain.Currency,
	bank MoneyTransferrer,
	register OwnershipRegister,
	recorder Recorder,
	logger *slog.Logger,
) *Market {
	return &Market{
		currency: currency,
		book:     NewBook(),
		bank:     bank,
		register: register,
		recorder: recorder,
		logger:   logger,
	}
}

// Currency returns the market's settlement currency.
func (m *Market) Currency() domain.Currency {
	return m.currency
}

// Book returns the market's order book.
func (m *Market) Book() *Book {
	return m.book
}

// Buy fills a purchase request against the cheapest open offers for the
// commodity and settles the resulting plan in one critical section per
// commodity key: no other settlement, post or withdrawal on the same key
// can interleave. An empty fill is a successful no-op, not an error.
//
// buyerCurrencyAccount is only consulted for currency-lot purchases; it
// receives the bought foreign currency.
func (m *Market) Buy(
	commodity domain.Commodity,
	maxAmount, maxTotalPrice, maxPricePerUnit float64,
	buyer domain.AgentID,
	buyerAccount domain.AccountID,
	buyerAuth string,
	buyerCurrencyAccount domain.AccountID,
) (Result, error) {
	if err := validateLimits(maxAmount, maxTotalPrice, maxPricePerUnit); err != nil {
		return Result{}, err
	}
	if !commodity.Valid() {
		return Result{}, domain.ErrUnknownCommodity
	}

	s := m.book.sideFor(commodity)
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := m.planLocked(s, maxAmount, maxTotalPrice, maxPricePerUnit)
	res, err := m.settleLocked(s, plan, buyer, buyerAccount, buyerAuth, buyerCurrencyAccount)
	if err != nil {
		return res, err
	}

	if res.AmountAcquired > 0 {
		m.logger.Debug("bought",
			slog.String("buyer", string(buyer)),
			slog.String("commodity", commodity.String()),
			slog.String("amount", humanize.CommafWithDigits(res.AmountAcquired, 2)),
			slog.String("spent", humanize.CommafWithDigits(res.MoneySpent, 2)),
			slog.String("currency", string(m.currency)),
		)
	}
	return res, nil
}

// FindPlan computes a fulfillment plan without settling it. The plan
// reflects the book at call time; offers may be consumed by concurrent
// settlements before a later Settle call, which then surfaces the
// difference as pair failures.
func (m *Market) FindPlan(
	commodity domain.Commodity,
	maxAmount, maxTotalPrice, maxPricePerUnit float64,
) (Plan, error) {
	if err := validateLimits(maxAmount, maxTotalPrice, maxPricePerUnit); err != nil {
		return nil, err
	}
	if !commodity.Valid() {
		return nil, domain.ErrUnknownCommodity
	}

	s := m.book.sideFor(commodity)
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.planLocked(s, maxAmount, maxTotalPrice, maxPricePerUnit), nil
}

// Settle executes a previously computed plan. Prefer Buy, which plans and
// settles in one critical section.
func (m *Market) Settle(
	plan Plan,
	buyer domain.AgentID,
	buyerAccount domain.AccountID,
	buyerAuth string,
	buyerCurrencyAccount domain.AccountID,
) (Result, error) {
	if len(plan) == 0 {
		return Result{}, nil
	}

	s := m.book.sideFor(plan[0].Offer.Commodity)
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.settleLocked(s, plan, buyer, buyerAccount, buyerAuth, buyerCurrencyAccount)
}

func validateLimits(maxAmount, maxTotalPrice, maxPricePerUnit float64) error {
	if !domain.Finite(maxAmount) || maxAmount <= 0 {
		return domain.ErrNonPositiveAmount
	}
	if !domain.Finite(maxTotalPrice) || maxTotalPrice <= 0 ||
		!domain.Finite(maxPricePerUnit) || maxPricePerUnit <= 0 {
		return domain.ErrNonPositivePrice
	}
	return nil
}
