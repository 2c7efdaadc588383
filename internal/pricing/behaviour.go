// Package pricing implements the per-seller adaptive pricing controller:
// a feedback loop over a rolling window of posted prices and observed
// demand that produces the next price to post.
package pricing

import (
	"math"
	"sync"

	"github.com/mwolff/settlex/internal/domain"
)

// windowSize is the number of retained periods. Index 0 is the current
// period, index 9 the oldest.
const windowSize = 10

// priceFloor replaces a non-positive price before a raise, since
// multiplying zero keeps it zero.
const priceFloor = 0.0001

// Decision causes reported to the statistics collaborator.
const (
	CauseSoldNothing    = "sold_nothing"
	CauseSoldEverything = "sold_everything"
	CauseSoldLess       = "sold_less"
	CauseSoldMore       = "sold_more"
	CauseImplicitRaise  = "implicit_raise"
)

// Recorder receives pricing decisions. The seller is always passed
// explicitly; the controller keeps no ambient notion of an active agent.
type Recorder interface {
	PriceDecision(seller domain.AgentID, cause string, delta float64)
}

// Params are the configuration-driven pricing defaults.
type Params struct {
	// DefaultInitialPrice is used when a behaviour is created without a
	// finite, non-negative explicit initial price.
	DefaultInitialPrice float64

	// ExplicitIncrement is the default initial adjustment increment
	// (a fraction, e.g. 0.1 = 10%).
	ExplicitIncrement float64

	// ImplicitIncrement is the fixed upward pressure applied when the
	// demand signals are inconclusive. Independent of the adaptive
	// increment.
	ImplicitIncrement float64
}

// DefaultParams returns the stock parameters.
func DefaultParams() Params {
	return Params{
		DefaultInitialPrice: 1.0,
		ExplicitIncrement:   0.1,
		ImplicitIncrement:   0.001,
	}
}

// Behaviour is the pricing controller for one (seller, offered object)
// pair. It holds a rolling window of the last ten periods of posted
// price, offered amount, sold amount and sold value, implemented as a
// ring buffer with a head index.
//
// The mutex makes observation registration safe against a concurrent
// period advance; distinct behaviours never share state and may advance
// in parallel.
type Behaviour struct {
	seller   domain.AgentID
	offered  domain.Commodity
	currency domain.Currency

	params   Params
	recorder Recorder

	initialPrice     float64
	initialIncrement float64

	mu          sync.Mutex
	increment   float64
	initialized bool
	head        int

	prices        [windowSize]float64
	soldAmount    [windowSize]float64
	soldValue     [windowSize]float64
	offeredAmount [windowSize]float64
}

// New creates a Behaviour for the seller's offered commodity, priced in
// the given currency. A non-positive increment selects the configured
// default. The initial price is validated lazily, on first use.
func New(
	seller domain.AgentID,
	offered domain.Commodity,
	currency domain.Currency,
	initialPrice, increment float64,
	params Params,
	recorder Recorder,
) *Behaviour {
	if increment <= 0 {
		increment = params.ExplicitIncrement
	}
	return &Behaviour{
		seller:           seller,
		offered:          offered,
		currency:         currency,
		params:           params,
		recorder:         recorder,
		initialPrice:     initialPrice,
		initialIncrement: increment,
		increment:        increment,
	}
}

// Seller returns the agent this behaviour prices for.
func (b *Behaviour) Seller() domain.AgentID {
	return b.seller
}

// Offered returns the commodity this behaviour prices.
func (b *Behaviour) Offered() domain.Commodity {
	return b.offered
}

// idx maps a logical period index (0 = current) to a ring slot.
func (b *Behaviour) idx(i int) int {
	return (b.head + i) % windowSize
}

func (b *Behaviour) ensureInitializedLocked() {
	if b.initialized {
		return
	}
	if domain.Finite(b.initialPrice) && b.initialPrice >= 0 {
		b.prices[b.idx(0)] = b.initialPrice
	} else {
		b.prices[b.idx(0)] = b.params.DefaultInitialPrice
	}
	b.initialized = true
}

// CurrentPrice returns the price for the current period, initializing the
// window on first use.
func (b *Behaviour) CurrentPrice() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureInitializedLocked()
	return b.prices[b.idx(0)]
}

// CurrentPriceSpread returns n evenly spaced prices centered on the
// current price within ± the current adjustment increment, for price
// discrimination across buyers. n = 1 yields exactly the current price.
// Returns nil for n < 1.
func (b *Behaviour) CurrentPriceSpread(n int) []float64 {
	if n < 1 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureInitializedLocked()

	price := b.prices[b.idx(0)]
	if n == 1 {
		return []float64{price}
	}

	minPrice := math.Max(0, price-b.increment)
	maxPrice := price + b.increment
	gap := (maxPrice - minPrice) / float64(n-1)

	prices := make([]float64, n)
	for i := range prices {
		prices[i] = minPrice + gap*float64(i)
	}
	return prices
}

// RegisterOfferedAmount accumulates amount into the current period's
// offered counter. Non-finite inputs are ignored.
func (b *Behaviour) RegisterOfferedAmount(amount float64) {
	if !domain.Finite(amount) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offeredAmount[b.idx(0)] += amount
}

// RegisterSelling accumulates a sale into the current period's sold
// counters. Non-finite amounts are ignored.
func (b *Behaviour) RegisterSelling(amount, value float64) {
	if !domain.Finite(amount) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.soldAmount[b.idx(0)] += amount
	b.soldValue[b.idx(0)] += value
}

// LastOfferedAmount returns the offered amount of the just-closed period.
func (b *Behaviour) LastOfferedAmount() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offeredAmount[b.idx(1)]
}

// LastSoldAmount returns the sold amount of the just-closed period.
func (b *Behaviour) LastSoldAmount() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.soldAmount[b.idx(1)]
}

// LastSoldValue returns the sold value of the just-closed period.
func (b *Behaviour) LastSoldValue() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.soldValue[b.idx(1)]
}

// Increment returns the current adjustment increment.
func (b *Behaviour) Increment() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.increment
}

// AdvancePeriod closes the current period and opens a new one: the window
// shifts by one slot (discarding the oldest period), the new period's
// counters start at zero, the price carries over from the closed period,
// and the decision rule then overwrites it with the newly computed price.
func (b *Behaviour) AdvancePeriod() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ensureInitializedLocked()

	// Rotate the ring: the slot before head becomes the new period 0.
	b.head = (b.head - 1 + windowSize) % windowSize
	cur := b.idx(0)
	b.prices[cur] = b.prices[b.idx(1)]
	b.offeredAmount[cur] = 0
	b.soldAmount[cur] = 0
	b.soldValue[cur] = 0

	b.prices[cur] = b.calculateNewPriceLocked()
}

// calculateNewPriceLocked evaluates the decision rules against the
// just-closed period (index 1) and the one before it (index 2).
func (b *Behaviour) calculateNewPriceLocked() float64 {
	oldPrice := b.prices[b.idx(1)]

	offered1 := b.offeredAmount[b.idx(1)]
	offered2 := b.offeredAmount[b.idx(2)]
	sold1 := b.soldAmount[b.idx(1)]
	sold2 := b.soldAmount[b.idx(2)]

	// Sold nothing although something was offered.
	if domain.Greater(offered1, 0) && domain.LesserEq(sold1, 0) {
		newPrice := b.lowerPriceLocked(oldPrice)
		b.record(CauseSoldNothing, -b.increment)
		return newPrice
	}

	// Sold everything that was offered.
	if domain.Greater(offered1, 0) && domain.ApproxEqual(sold1, offered1) {
		newPrice := b.raisePriceLocked(oldPrice)
		b.record(CauseSoldEverything, b.increment)
		return newPrice
	}

	// Sold less than the period before, despite having had the capacity
	// to match it.
	if domain.Greater(offered1, 0) &&
		domain.Greater(sold2, 0) &&
		domain.Lesser(sold1, sold2) &&
		domain.GreaterEq(offered1, sold2) {
		newPrice := b.lowerPriceLocked(oldPrice)
		b.record(CauseSoldLess, -b.increment)
		return newPrice
	}

	// Sold more than the period before, which had the capacity to match
	// this period's sales but didn't.
	if domain.Greater(offered1, 0) &&
		domain.Greater(sold2, 0) &&
		domain.Greater(sold1, sold2) &&
		domain.GreaterEq(offered2, sold1) {
		newPrice := b.raisePriceLocked(oldPrice)
		b.record(CauseSoldMore, b.increment)
		return newPrice
	}

	// Inconclusive signals: implicit upward pressure models latent demand.
	b.record(CauseImplicitRaise, b.params.ImplicitIncrement)
	return oldPrice * (1.0 + b.params.ImplicitIncrement)
}

func (b *Behaviour) raisePriceLocked(price float64) float64 {
	b.updateIncrementLocked(true)
	if domain.LesserEq(price, 0) {
		return priceFloor
	}
	return price * (1.0 + b.increment)
}

func (b *Behaviour) lowerPriceLocked(price float64) float64 {
	b.updateIncrementLocked(false)
	return price / (1.0 + b.increment)
}

// updateIncrementLocked adapts the adjustment rate before a raise or
// lower. A move in the same direction as the realized price trend
// accelerates the increment; a move against it (oscillation) decelerates.
// The increment never exceeds its initial value and is reset to it if it
// ever decays to zero or below.
func (b *Behaviour) updateIncrementLocked(raising bool) {
	if domain.LesserEq(b.increment, 0) {
		b.increment = b.initialIncrement
	}

	last := b.prices[b.idx(1)]
	penultimate := b.prices[b.idx(2)]

	if raising {
		if domain.Greater(last, penultimate) {
			b.increment = math.Min(b.initialIncrement, b.increment*1.1)
		} else if domain.Lesser(last, penultimate) {
			b.increment = math.Min(b.initialIncrement, b.increment/1.1)
		}
	} else {
		if domain.Lesser(last, penultimate) {
			b.increment = math.Min(b.initialIncrement, b.increment*1.1)
		} else if domain.Greater(last, penultimate) {
			b.increment = math.Min(b.initialIncrement, b.increment/1.1)
		}
	}
}

func (b *Behaviour) record(cause string, delta float64) {
	if b.recorder == nil {
		return
	}
	b.recorder.PriceDecision(b.seller, cause, delta)
}
