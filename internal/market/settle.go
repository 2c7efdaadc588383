package market

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/mwolff/settlex/internal/domain"
)

// FailureStage says how far a failed pair got before being abandoned.
// Money always commits before ownership, so an ownership-stage failure
// means the money transfer for that pair is already irreversible.
type FailureStage string

const (
	StageMoney     FailureStage = "money"
	StageOwnership FailureStage = "ownership"
)

// PairFailure describes one abandoned (offer, amount) pair. Pairs settled
// earlier in the same plan remain committed, and later pairs are still
// attempted.
type PairFailure struct {
	OfferID string
	Stage   FailureStage
	Err     error

	// MoneyCommitted is the amount of settlement currency that had
	// already moved when an ownership-stage failure struck. Zero for
	// money-stage failures.
	MoneyCommitted float64
}

// Result reports how much of a plan actually settled. A zero result from
// an empty plan is a successful no-op. Callers treat "less than requested"
// as the normal partial outcome and inspect Failures for abandoned pairs.
type Result struct {
	AmountAcquired float64
	MoneySpent     float64
	Failures       []PairFailure
}

// settleLocked executes the plan pair by pair, in plan order. Per pair:
// money transfer to the seller's account, then the kind-specific ownership
// transfer, then the seller's settlement callback (exactly once, only
// after both transfers succeeded), then the offer decrement. Each pair
// settles independently and irreversibly once started; a failing pair is
// recorded and the rest of the plan is still attempted. An offer of
// unknown commodity kind aborts the call, since it indicates a broken
// book invariant rather than a caller mistake.
//
// The caller must hold the side lock.
func (m *Market) settleLocked(
	s *side,
	plan Plan,
	buyer domain.AgentID,
	buyerAccount domain.AccountID,
	buyerAuth string,
	buyerCurrencyAccount domain.AccountID,
) (Result, error) {
	var res Result

	for _, fill := range plan {
		offer := fill.Offer
		cost := fill.Amount * offer.PricePerUnit
		memo := fmt.Sprintf("price for %s units of %s",
			humanize.CommafWithDigits(fill.Amount, 2), offer.Commodity)

		// Money first.
		if err := m.bank.Transfer(buyerAccount, offer.SellerAccount, cost, buyerAuth, memo); err != nil {
			res.Failures = append(res.Failures, PairFailure{
				OfferID: offer.ID,
				Stage:   StageMoney,
				Err:     err,
			})
			continue
		}

		// Then ownership, dispatched on the commodity kind.
		switch offer.Commodity.Kind {
		case domain.KindGood:
			if err := m.register.TransferGood(offer.Seller, buyer, offer.Commodity.Good, fill.Amount); err != nil {
				res.Failures = append(res.Failures, PairFailure{
					OfferID:        offer.ID,
					Stage:          StageOwnership,
					Err:            err,
					MoneyCommitted: cost,
				})
				continue
			}
			m.recorder.MarketTick(offer.PricePerUnit, offer.Commodity, m.currency, fill.Amount)

		case domain.KindCurrencyLot:
			curMemo := fmt.Sprintf("%s units of %s",
				humanize.CommafWithDigits(fill.Amount, 2), offer.Commodity)
			if err := m.bank.Transfer(offer.CurrencyAccount, buyerCurrencyAccount, fill.Amount, offer.CurrencyAuth, curMemo); err != nil {
				res.Failures = append(res.Failures, PairFailure{
					OfferID:        offer.ID,
					Stage:          StageOwnership,
					Err:            err,
					MoneyCommitted: cost,
				})
				continue
			}
			m.recorder.MarketTick(offer.PricePerUnit, offer.Commodity, m.currency, fill.Amount)

		case domain.KindProperty:
			if err := m.register.TransferProperty(offer.Seller, buyer, offer.PropertyID); err != nil {
				res.Failures = append(res.Failures, PairFailure{
					OfferID:        offer.ID,
					Stage:          StageOwnership,
					Err:            err,
					MoneyCommitted: cost,
				})
				continue
			}
			// Property is not a continuously priced commodity; no tick.

		default:
			return res, domain.ErrUnknownCommodityKind
		}

		if cb := m.book.callbackFor(offer.Seller); cb != nil {
			cb(SettlementNotice{
				Commodity:    offer.Commodity,
				PropertyID:   offer.PropertyID,
				Amount:       fill.Amount,
				PricePerUnit: offer.PricePerUnit,
				Currency:     m.currency,
			})
		}

		s.decrementOrRemoveLocked(offer, fill.Amount)

		res.MoneySpent += cost
		res.AmountAcquired += fill.Amount
	}

	return res, nil
}
