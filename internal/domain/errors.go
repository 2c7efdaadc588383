package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	// Constraint violations: the caller passed non-positive amounts or
	// prices. Rejected before any book mutation.
	ErrNonPositiveAmount = errors.New("non_positive_amount")
	ErrNonPositivePrice  = errors.New("non_positive_price")

	// Transfer failures raised by the banking collaborator.
	ErrAccountNotFound   = errors.New("account_not_found")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrBadAuthorization  = errors.New("bad_authorization")
	ErrAccountFrozen     = errors.New("account_frozen")
	ErrCurrencyMismatch  = errors.New("currency_mismatch")

	// Transfer failures raised by the ownership register.
	ErrNotOwned             = errors.New("not_owned")
	ErrInsufficientQuantity = errors.New("insufficient_quantity")

	// Internal invariant break: an offer with a commodity kind the
	// settlement engine does not know. Aborts the settlement call.
	ErrUnknownCommodityKind = errors.New("unknown_commodity_kind")

	ErrAgentNotFound    = errors.New("agent_not_found")
	ErrAgentExists      = errors.New("agent_already_exists")
	ErrUnknownCommodity = errors.New("unknown_commodity")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
