package market

import (
	"github.com/mwolff/settlex/internal/domain"
)

// Fill is one (offer, amount-to-take) pair of a fulfillment plan.
type Fill struct {
	Offer  *Offer
	Amount float64
}

// Plan is the chosen subset and partial amounts of offers satisfying one
// buy request, ascending by offer price. Invariants: total amount stays
// within the requested max amount, total cost within the max total price,
// every offer's price within the price cap, and no fill exceeds its
// offer's remaining amount.
type Plan []Fill

// TotalAmount returns the summed fill amounts of the plan.
func (p Plan) TotalAmount() float64 {
	var sum float64
	for _, f := range p {
		sum += f.Amount
	}
	return sum
}

// TotalPrice returns the summed cost (amount × price) of the plan.
func (p Plan) TotalPrice() float64 {
	var sum float64
	for _, f := range p {
		sum += f.Amount * f.Offer.PricePerUnit
	}
	return sum
}

// planLocked greedily scans the side's offers in ascending price order and
// takes from each qualifying offer the most the three caps still allow:
// min(offer remainder, remaining max amount, remaining budget / price).
// Offers above the price cap end the scan (the book is price-sorted), and
// offers whose permitted take rounds to zero are skipped without being
// consumed. The caller must hold the side lock.
func (m *Market) planLocked(s *side, maxAmount, maxTotalPrice, maxPricePerUnit float64) Plan {
	var plan Plan
	remaining := maxAmount
	var spent float64

	s.offers.Ascend(func(o *Offer) bool {
		if domain.Greater(o.PricePerUnit, maxPricePerUnit) {
			return false
		}
		if domain.LesserEq(remaining, 0) || domain.GreaterEq(spent, maxTotalPrice) {
			return false
		}

		take := o.Amount
		if take > remaining {
			take = remaining
		}
		if byBudget := (maxTotalPrice - spent) / o.PricePerUnit; take > byBudget {
			take = byBudget
		}
		if domain.LesserEq(take, 0) {
			// Zero contribution; skip without consuming the offer.
			return true
		}

		plan = append(plan, Fill{Offer: o, Amount: take})
		remaining -= take
		spent += take * o.PricePerUnit
		return true
	})

	return plan
}
