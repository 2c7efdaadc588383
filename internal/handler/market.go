package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/service"
)

// MarketHandler handles HTTP requests for market data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// commodityFromQuery reads a commodity reference from query parameters:
// kind plus good, currency, or property_class depending on the kind.
func commodityFromQuery(q url.Values) (domain.Commodity, error) {
	p := commodityParam{
		Kind:          q.Get("kind"),
		Good:          q.Get("good"),
		Currency:      q.Get("currency"),
		PropertyClass: q.Get("property_class"),
	}
	return p.toCommodity()
}

// depthResponse is the JSON response for GET /markets/depth.
type depthResponse struct {
	Offers []offerResponse `json:"offers"`
}

// Depth handles GET /markets/depth. Offers are returned in ascending
// price order.
func (h *MarketHandler) Depth(w http.ResponseWriter, r *http.Request) {
	commodity, err := commodityFromQuery(r.URL.Query())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	views, err := h.marketSvc.Depth(commodity)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	offers := make([]offerResponse, 0, len(views))
	for _, v := range views {
		offers = append(offers, offerResponse{
			OfferID:      v.ID,
			Seller:       string(v.Seller),
			Amount:       v.Amount,
			PricePerUnit: v.PricePerUnit,
		})
	}

	WriteJSON(w, http.StatusOK, depthResponse{Offers: offers})
}

// priceResponse is the JSON response for GET /agents/{agent_id}/price.
type priceResponse struct {
	Seller string  `json:"seller"`
	Price  float64 `json:"price"`
}

// CurrentPrice handles GET /agents/{agent_id}/price. It returns the
// price the seller's pricing behaviour would quote for the commodity in
// the current period.
func (h *MarketHandler) CurrentPrice(w http.ResponseWriter, r *http.Request) {
	seller := domain.AgentID(chi.URLParam(r, "agent_id"))

	commodity, err := commodityFromQuery(r.URL.Query())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	price, err := h.marketSvc.CurrentPrice(seller, commodity)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, priceResponse{
		Seller: string(seller),
		Price:  price,
	})
}
