package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/service"
)

// AgentHandler handles HTTP requests for agent endpoints.
type AgentHandler struct {
	agentSvc *service.AgentService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(agentSvc *service.AgentService) *AgentHandler {
	return &AgentHandler{agentSvc: agentSvc}
}

// createAgentRequest is the JSON request body for POST /agents.
type createAgentRequest struct {
	AgentID    string             `json:"agent_id"`
	Cash       float64            `json:"cash"`
	Goods      map[string]float64 `json:"goods,omitempty"`
	Properties []string           `json:"properties,omitempty"`
}

// agentResponse is the JSON response for agent endpoints.
type agentResponse struct {
	AgentID    string             `json:"agent_id"`
	Account    string             `json:"account"`
	Cash       float64            `json:"cash"`
	Currency   string             `json:"currency"`
	Goods      map[string]float64 `json:"goods"`
	Properties []string           `json:"properties"`
}

func toAgentResponse(v *service.AgentView) agentResponse {
	goods := make(map[string]float64, len(v.Goods))
	for g, amount := range v.Goods {
		goods[string(g)] = amount
	}
	props := make([]string, 0, len(v.Properties))
	for _, p := range v.Properties {
		props = append(props, string(p))
	}
	return agentResponse{
		AgentID:    string(v.AgentID),
		Account:    string(v.Account),
		Cash:       v.Cash,
		Currency:   string(v.Currency),
		Goods:      goods,
		Properties: props,
	}
}

// Create handles POST /agents.
func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	goods := make(map[domain.GoodType]float64, len(req.Goods))
	for g, amount := range req.Goods {
		goods[domain.GoodType(g)] = amount
	}
	props := make([]domain.PropertyClass, 0, len(req.Properties))
	for _, p := range req.Properties {
		props = append(props, domain.PropertyClass(p))
	}

	view, err := h.agentSvc.Create(service.CreateAgentRequest{
		AgentID:    domain.AgentID(req.AgentID),
		Cash:       req.Cash,
		Goods:      goods,
		Properties: props,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toAgentResponse(view))
}

// Get handles GET /agents/{agent_id}.
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := domain.AgentID(chi.URLParam(r, "agent_id"))

	view, err := h.agentSvc.Get(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toAgentResponse(view))
}
