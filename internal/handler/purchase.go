package handler

import (
	"net/http"

	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/service"
)

// PurchaseHandler handles HTTP requests for purchases.
type PurchaseHandler struct {
	marketSvc *service.MarketService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(marketSvc *service.MarketService) *PurchaseHandler {
	return &PurchaseHandler{marketSvc: marketSvc}
}

// purchaseRequest is the JSON request body for POST /purchases.
type purchaseRequest struct {
	Buyer           string         `json:"buyer"`
	Commodity       commodityParam `json:"commodity"`
	MaxAmount       float64        `json:"max_amount"`
	MaxTotalPrice   float64        `json:"max_total_price"`
	MaxPricePerUnit float64        `json:"max_price_per_unit"`
}

// pairFailureResponse describes one abandoned settlement pair.
type pairFailureResponse struct {
	OfferID        string  `json:"offer_id"`
	Stage          string  `json:"stage"`
	Error          string  `json:"error"`
	MoneyCommitted float64 `json:"money_committed,omitempty"`
}

// purchaseResponse is the JSON response for POST /purchases. A purchase
// that acquired less than requested (or nothing) is still a 200; failures
// lists any pairs abandoned mid-settlement.
type purchaseResponse struct {
	AmountAcquired float64               `json:"amount_acquired"`
	MoneySpent     float64               `json:"money_spent"`
	Failures       []pairFailureResponse `json:"failures"`
}

// Buy handles POST /purchases.
func (h *PurchaseHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	commodity, err := req.Commodity.toCommodity()
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	res, err := h.marketSvc.Buy(service.BuyRequest{
		Buyer:           domain.AgentID(req.Buyer),
		Commodity:       commodity,
		MaxAmount:       req.MaxAmount,
		MaxTotalPrice:   req.MaxTotalPrice,
		MaxPricePerUnit: req.MaxPricePerUnit,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	failures := make([]pairFailureResponse, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, pairFailureResponse{
			OfferID:        f.OfferID,
			Stage:          string(f.Stage),
			Error:          f.Err.Error(),
			MoneyCommitted: f.MoneyCommitted,
		})
	}

	WriteJSON(w, http.StatusOK, purchaseResponse{
		AmountAcquired: res.AmountAcquired,
		MoneySpent:     res.MoneySpent,
		Failures:       failures,
	})
}
