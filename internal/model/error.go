package model

import "strings"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeValidationRequired = "VALIDATION_REQUIRED"
	ErrCodePickupRequired     = "PICKUP_LOCATION_REQUIRED"
	ErrCodePaymentInFlight    = "PAYMENT_IN_FLIGHT"
	ErrCodeProviderError      = "PROVIDER_ERROR"
	ErrCodeStockConflict      = "STOCK_CONFLICT"
	ErrCodePaymentFailed      = "PAYMENT_FAILED"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUnknownDiscount    = "UNKNOWN_DISCOUNT_CODE"
	ErrCodeDiscountLength     = "INVALID_DISCOUNT_LENGTH"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrValidationRequired = NewDomainError(ErrCodeValidationRequired, "Please complete all required checkout fields")
	ErrPickupRequired     = NewDomainError(ErrCodePickupRequired, "Please select a pickup location before continuing")
	ErrPaymentInFlight    = NewDomainError(ErrCodePaymentInFlight, "A payment attempt is already in progress")
	ErrProviderFailure    = NewDomainError(ErrCodeProviderError, "There was a problem processing the payment, please try again")
	ErrPaymentFailed      = NewDomainError(ErrCodePaymentFailed, "The payment could not be processed")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrUnknownDiscount    = NewDomainError(ErrCodeUnknownDiscount, "Discount code is not recognised")
	ErrDiscountLength     = NewDomainError(ErrCodeDiscountLength, "Discount code must be between 3 and 32 characters")
)

// UnavailableItem names a product the backend reported as out of stock
// between cart assembly and capture.
type UnavailableItem struct {
	ProductName string `json:"product_name"`
	VariantName string `json:"variant_name,omitempty"`
}

// Label renders the item for a user-facing message, variant included
// when present.
func (u UnavailableItem) Label() string {
	if u.VariantName != "" {
		return u.ProductName + " (" + u.VariantName + ")"
	}
	return u.ProductName
}

// StockConflictError is the backend rejection for items that became
// unavailable after capture. Recoverable: the caller refreshes the cached
// order and asks the user to edit the cart, no automatic retry.
type StockConflictError struct {
	Items []UnavailableItem
	Order *OrderSnapshot
}

func (e *StockConflictError) Error() string {
	names := make([]string, len(e.Items))
	for i, it := range e.Items {
		names[i] = it.Label()
	}
	return "items out of stock: " + strings.Join(names, ", ")
}
