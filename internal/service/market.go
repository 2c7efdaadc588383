package service

import (
	"sync"

	"github.com/mwolff/settlex/internal/clock"
	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/market"
	"github.com/mwolff/settlex/internal/pricing"
)

// PostOfferRequest is the input for placing a selling offer. A nil Price
// lets the seller's adaptive pricing behaviour price the offer.
type PostOfferRequest struct {
	Seller     domain.AgentID
	Commodity  domain.Commodity
	Amount     float64
	Price      *float64
	PropertyID domain.PropertyID // property offers only
}

// BuyRequest is the input for a purchase.
type BuyRequest struct {
	Buyer           domain.AgentID
	Commodity       domain.Commodity
	MaxAmount       float64
	MaxTotalPrice   float64
	MaxPricePerUnit float64
}

// OfferView is the externally visible shape of an open offer.
type OfferView struct {
	ID           string
	Seller       domain.AgentID
	Amount       float64
	PricePerUnit float64
}

// behaviourKey identifies one pricing controller instance.
type behaviourKey struct {
	seller    domain.AgentID
	commodity domain.Commodity
}

// MarketService orchestrates offers, purchases and the pricing behaviours
// that feed offer prices. It owns one behaviour per (seller, commodity)
// pair and installs a per-seller settlement callback that routes sold
// amounts back into the matching behaviour.
type MarketService struct {
	market   *market.Market
	agents   *AgentService
	clock    *clock.Clock
	params   pricing.Params
	recorder pricing.Recorder

	mu         sync.Mutex
	behaviours map[behaviourKey]*pricing.Behaviour
}

// NewMarketService creates a MarketService.
func NewMarketService(
	m *market.Market,
	agents *AgentService,
	c *clock.Clock,
	params pricing.Params,
	recorder pricing.Recorder,
) *MarketService {
	return &MarketService{
		market:     m,
		agents:     agents,
		clock:      c,
		params:     params,
		recorder:   recorder,
		behaviours: make(map[behaviourKey]*pricing.Behaviour),
	}
}

// Behaviour returns the pricing behaviour for the seller's commodity,
// creating it (and registering it with the period clock) on first use.
func (s *MarketService) Behaviour(seller domain.AgentID, commodity domain.Commodity) *pricing.Behaviour {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := behaviourKey{seller: seller, commodity: commodity}
	if b, ok := s.behaviours[key]; ok {
		return b
	}

	b := pricing.New(seller, commodity, s.market.Currency(),
		s.params.DefaultInitialPrice, s.params.ExplicitIncrement, s.params, s.recorder)
	s.behaviours[key] = b
	if s.clock != nil {
		s.clock.Register(b)
	}
	return b
}

// PostOffer validates and places a selling offer. Offers without an
// explicit price are priced by the seller's behaviour, which also records
// the offered amount for the current period.
func (s *MarketService) PostOffer(req PostOfferRequest) (*OfferView, error) {
	if !s.agents.Exists(req.Seller) {
		return nil, domain.ErrAgentNotFound
	}
	if !req.Commodity.Valid() {
		return nil, domain.ErrUnknownCommodity
	}

	offer := &market.Offer{
		Commodity:  req.Commodity,
		Seller:     req.Seller,
		Amount:     req.Amount,
		PropertyID: req.PropertyID,
	}

	account, _, err := s.agents.Account(req.Seller)
	if err != nil {
		return nil, err
	}
	offer.SellerAccount = account

	switch req.Commodity.Kind {
	case domain.KindCurrencyLot:
		acc, auth, err := s.agents.CurrencyAccount(req.Seller, req.Commodity.Currency)
		if err != nil {
			return nil, err
		}
		offer.CurrencyAccount = acc
		offer.CurrencyAuth = auth
	case domain.KindProperty:
		if req.PropertyID == "" {
			return nil, &domain.ValidationError{Message: "property_id is required for property offers"}
		}
		offer.Amount = 1
	}

	if req.Price != nil {
		offer.PricePerUnit = *req.Price
	} else {
		b := s.Behaviour(req.Seller, req.Commodity)
		offer.PricePerUnit = b.CurrentPrice()
		b.RegisterOfferedAmount(offer.Amount)
	}

	if err := s.market.Book().Post(offer, s.sellerCallback(req.Seller)); err != nil {
		return nil, err
	}

	return &OfferView{
		ID:           offer.ID,
		Seller:       offer.Seller,
		Amount:       offer.Amount,
		PricePerUnit: offer.PricePerUnit,
	}, nil
}

// Withdraw removes all of the seller's open offers and its settlement
// callback registration.
func (s *MarketService) Withdraw(seller domain.AgentID) error {
	if !s.agents.Exists(seller) {
		return domain.ErrAgentNotFound
	}
	s.market.Book().WithdrawAll(seller)
	return nil
}

// Buy fills a purchase request against the market and settles it.
func (s *MarketService) Buy(req BuyRequest) (market.Result, error) {
	account, auth, err := s.agents.Account(req.Buyer)
	if err != nil {
		return market.Result{}, err
	}

	var currencyAccount domain.AccountID
	if req.Commodity.Kind == domain.KindCurrencyLot {
		currencyAccount, _, err = s.agents.CurrencyAccount(req.Buyer, req.Commodity.Currency)
		if err != nil {
			return market.Result{}, err
		}
	}

	return s.market.Buy(req.Commodity,
		req.MaxAmount, req.MaxTotalPrice, req.MaxPricePerUnit,
		req.Buyer, account, auth, currencyAccount)
}

// Depth returns the open offers for a commodity in ascending price order.
func (s *MarketService) Depth(commodity domain.Commodity) ([]OfferView, error) {
	if !commodity.Valid() {
		return nil, domain.ErrUnknownCommodity
	}

	views := make([]OfferView, 0)
	s.market.Book().Walk(commodity, func(o *market.Offer) bool {
		views = append(views, OfferView{
			ID:           o.ID,
			Seller:       o.Seller,
			Amount:       o.Amount,
			PricePerUnit: o.PricePerUnit,
		})
		return true
	})
	return views, nil
}

// CurrentPrice returns the behaviour-driven price the seller would post
// for the commodity in the current period.
func (s *MarketService) CurrentPrice(seller domain.AgentID, commodity domain.Commodity) (float64, error) {
	if !s.agents.Exists(seller) {
		return 0, domain.ErrAgentNotFound
	}
	if !commodity.Valid() {
		return 0, domain.ErrUnknownCommodity
	}
	return s.Behaviour(seller, commodity).CurrentPrice(), nil
}

// sellerCallback builds the settlement callback for a seller: it routes
// every settled portion into the behaviour pricing that commodity, so the
// next period's decision sees the sale.
func (s *MarketService) sellerCallback(seller domain.AgentID) market.SettlementFunc {
	return func(n market.SettlementNotice) {
		s.mu.Lock()
		b, ok := s.behaviours[behaviourKey{seller: seller, commodity: n.Commodity}]
		s.mu.Unlock()
		if ok {
			b.RegisterSelling(n.Amount, n.Amount*n.PricePerUnit)
		}
	}
}
