package market

import (
	"github.com/mwolff/settlex/internal/domain"
)

// Offer is one seller's standing ask: a fixed commodity at a fixed unit
// price, partially fillable. The settlement engine is the only mutator of
// Amount; everything else is fixed at posting time.
type Offer struct {
	ID        string
	Commodity domain.Commodity
	Seller    domain.AgentID

	// SellerAccount receives the settlement proceeds.
	SellerAccount domain.AccountID

	// CurrencyAccount and CurrencyAuth are set on currency-lot offers
	// only: the account holding the offered currency, and the
	// authorization to move it.
	CurrencyAccount domain.AccountID
	CurrencyAuth    string

	// PropertyID is set on property offers only. Property offers always
	// have Amount fixed at 1.
	PropertyID domain.PropertyID

	// Amount is the remaining unsold amount. An offer with Amount <= 0 is
	// removed from the book.
	Amount float64

	PricePerUnit float64

	// seq orders offers at equal price by insertion time.
	seq uint64
}

// offerLess orders offers by price ascending, then insertion order. Ties at
// equal price go to the offer posted first.
func offerLess(a, b *Offer) bool {
	if a.PricePerUnit != b.PricePerUnit {
		return a.PricePerUnit < b.PricePerUnit
	}
	return a.seq < b.seq
}

// SettlementNotice describes one settled offer portion to the seller's
// settlement callback.
type SettlementNotice struct {
	Commodity    domain.Commodity
	PropertyID   domain.PropertyID // set for property settlements
	Amount       float64
	PricePerUnit float64

	// Currency is the settlement currency the seller was paid in.
	Currency domain.Currency
}

// SettlementFunc is a seller-supplied callback invoked exactly once per
// settled offer portion, after both the money and the ownership transfer
// for that portion succeeded. It runs inside the settlement critical
// section for the commodity, so it must return promptly and must not call
// back into the market for the same commodity.
type SettlementFunc func(notice SettlementNotice)
