package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mwolff/settlex/internal/domain"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// WriteServiceError maps service-layer errors onto HTTP status codes.
func WriteServiceError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		WriteError(w, http.StatusBadRequest, "validation_error", vErr.Message)
	case errors.Is(err, domain.ErrAgentNotFound):
		WriteError(w, http.StatusNotFound, domain.ErrAgentNotFound.Error(), "agent not found")
	case errors.Is(err, domain.ErrUnknownCommodity):
		WriteError(w, http.StatusNotFound, domain.ErrUnknownCommodity.Error(), "unknown commodity")
	case errors.Is(err, domain.ErrAgentExists):
		WriteError(w, http.StatusConflict, domain.ErrAgentExists.Error(), "agent already exists")
	case errors.Is(err, domain.ErrNotOwned):
		WriteError(w, http.StatusConflict, domain.ErrNotOwned.Error(), "property not owned by seller")
	case errors.Is(err, domain.ErrNonPositiveAmount), errors.Is(err, domain.ErrNonPositivePrice):
		WriteError(w, http.StatusBadRequest, "constraint_violation", "amounts and prices must be positive")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// ParseJSON decodes the request body as JSON into v.
// It validates that the Content-Type header is application/json and
// returns an error for missing/incorrect content type or malformed JSON.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	return nil
}

// commodityParam is the JSON shape of a commodity reference in requests.
type commodityParam struct {
	Kind          string `json:"kind"`
	Good          string `json:"good,omitempty"`
	Currency      string `json:"currency,omitempty"`
	PropertyClass string `json:"property_class,omitempty"`
}

// toCommodity converts the request shape into a domain commodity,
// validating it.
func (p commodityParam) toCommodity() (domain.Commodity, error) {
	c := domain.Commodity{
		Kind:          domain.CommodityKind(p.Kind),
		Good:          domain.GoodType(p.Good),
		Currency:      domain.Currency(p.Currency),
		PropertyClass: domain.PropertyClass(p.PropertyClass),
	}
	if !c.Valid() {
		return domain.Commodity{}, domain.ErrUnknownCommodity
	}
	return c, nil
}
