package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/service"
)

// OfferHandler handles HTTP requests for offer endpoints.
type OfferHandler struct {
	marketSvc *service.MarketService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(marketSvc *service.MarketService) *OfferHandler {
	return &OfferHandler{marketSvc: marketSvc}
}

// postOfferRequest is the JSON request body for POST /offers. A null price
// lets the seller's pricing behaviour price the offer.
type postOfferRequest struct {
	Seller     string         `json:"seller"`
	Commodity  commodityParam `json:"commodity"`
	Amount     float64        `json:"amount"`
	Price      *float64       `json:"price"`
	PropertyID string         `json:"property_id,omitempty"`
}

// offerResponse is the JSON shape of an open offer.
type offerResponse struct {
	OfferID      string  `json:"offer_id"`
	Seller       string  `json:"seller"`
	Amount       float64 `json:"amount"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// Post handles POST /offers.
func (h *OfferHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req postOfferRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	commodity, err := req.Commodity.toCommodity()
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	view, err := h.marketSvc.PostOffer(service.PostOfferRequest{
		Seller:     domain.AgentID(req.Seller),
		Commodity:  commodity,
		Amount:     req.Amount,
		Price:      req.Price,
		PropertyID: domain.PropertyID(req.PropertyID),
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, offerResponse{
		OfferID:      view.ID,
		Seller:       string(view.Seller),
		Amount:       view.Amount,
		PricePerUnit: view.PricePerUnit,
	})
}

// WithdrawAll handles DELETE /agents/{agent_id}/offers.
func (h *OfferHandler) WithdrawAll(w http.ResponseWriter, r *http.Request) {
	seller := domain.AgentID(chi.URLParam(r, "agent_id"))

	if err := h.marketSvc.Withdraw(seller); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}
