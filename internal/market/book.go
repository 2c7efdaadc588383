package market

import (
	"sync"
	"sync/atomic"

	"github.com/google/btree"
	"github.com/google/uuid"

	"github.com/mwolff/settlex/internal/domain"
)

// side holds the open offers for one commodity key, ordered by price
// ascending then insertion order. The mutex serializes every read and
// write touching the key: a settlement pass holds it for the whole
// plan-and-settle critical section, so no other buyer or seller can
// interleave on the same commodity. Different commodities proceed in
// parallel.
type side struct {
	mu     sync.Mutex
	offers *btree.BTreeG[*Offer]
}

// Book is the order book: per-commodity offer collections plus the
// registry of seller settlement callbacks. The book owns the callback
// mapping — at most one active callback per seller, cleared together with
// the seller's offers by WithdrawAll.
type Book struct {
	mu        sync.RWMutex
	sides     map[domain.Commodity]*side
	callbacks map[domain.AgentID]SettlementFunc
	seq       atomic.Uint64
}

// NewBook creates an empty order book.
func NewBook() *Book {
	return &Book{
		sides:     make(map[domain.Commodity]*side),
		callbacks: make(map[domain.AgentID]SettlementFunc),
	}
}

// Post places a selling offer on the book and, when callback is non-nil,
// registers it as the seller's settlement callback (replacing any previous
// one). Offers with non-positive amount or price are rejected before any
// book mutation. Property offers always carry amount 1.
func (b *Book) Post(offer *Offer, callback SettlementFunc) error {
	if !offer.Commodity.Valid() {
		return domain.ErrUnknownCommodity
	}
	if offer.Commodity.Kind == domain.KindProperty {
		offer.Amount = 1
	}
	if offer.Amount <= 0 {
		return domain.ErrNonPositiveAmount
	}
	if offer.PricePerUnit <= 0 {
		return domain.ErrNonPositivePrice
	}

	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	offer.seq = b.seq.Add(1)

	s := b.sideFor(offer.Commodity)
	s.mu.Lock()
	s.offers.ReplaceOrInsert(offer)
	s.mu.Unlock()

	if callback != nil {
		b.mu.Lock()
		b.callbacks[offer.Seller] = callback
		b.mu.Unlock()
	}
	return nil
}

// WithdrawAll removes every open offer belonging to the seller and clears
// the seller's settlement callback registration. Used when a seller exits
// a market or replaces all its offers.
func (b *Book) WithdrawAll(seller domain.AgentID) {
	b.mu.Lock()
	delete(b.callbacks, seller)
	sides := make([]*side, 0, len(b.sides))
	for _, s := range b.sides {
		sides = append(sides, s)
	}
	b.mu.Unlock()

	for _, s := range sides {
		s.mu.Lock()
		var drop []*Offer
		s.offers.Ascend(func(o *Offer) bool {
			if o.Seller == seller {
				drop = append(drop, o)
			}
			return true
		})
		for _, o := range drop {
			s.offers.Delete(o)
		}
		s.mu.Unlock()
	}
}

// Walk iterates the open offers for a commodity in ascending price order
// (ties by insertion order). The callback returns true to continue, false
// to stop. Each call re-reads the live book; there is no snapshot
// isolation across calls.
func (b *Book) Walk(commodity domain.Commodity, fn func(*Offer) bool) {
	s := b.sideFor(commodity)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers.Ascend(fn)
}

// Len returns the number of open offers for a commodity.
func (b *Book) Len(commodity domain.Commodity) int {
	s := b.sideFor(commodity)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offers.Len()
}

// callbackFor returns the seller's registered settlement callback, or nil.
func (b *Book) callbackFor(seller domain.AgentID) SettlementFunc {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.callbacks[seller]
}

// sideFor returns the side for the commodity, creating it if needed.
func (b *Book) sideFor(commodity domain.Commodity) *side {
	b.mu.RLock()
	s, ok := b.sides[commodity]
	b.mu.RUnlock()
	if ok {
		return s
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Double-check after acquiring write lock.
	if s, ok = b.sides[commodity]; ok {
		return s
	}
	const degree = 32
	s = &side{offers: btree.NewG[*Offer](degree, offerLess)}
	b.sides[commodity] = s
	return s
}

// decrementOrRemoveLocked reduces the offer's remaining amount and removes
// it from the side once exhausted. The caller must hold the side lock.
func (s *side) decrementOrRemoveLocked(offer *Offer, amount float64) {
	offer.Amount -= amount
	if offer.Amount <= domain.Epsilon {
		s.offers.Delete(offer)
	}
}
