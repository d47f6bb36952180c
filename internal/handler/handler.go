package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out, nothing left to do
		return
	}
}

// writeError writes a standardised error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().
		Str("code", code).
		Str("error", message).
		Int("status", status).
		Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a typed domain error onto an HTTP status. The
// error's own code travels in the body so clients dispatch on the
// discriminant, never on message text.
func writeDomainError(w http.ResponseWriter, err *model.DomainError, logger zerolog.Logger) {
	status := http.StatusInternalServerError

	switch err.Code {
	case model.ErrCodeValidationRequired,
		model.ErrCodePickupRequired,
		model.ErrCodeUnknownDiscount,
		model.ErrCodeDiscountLength:
		status = http.StatusBadRequest
	case model.ErrCodePaymentInFlight:
		status = http.StatusConflict
	case model.ErrCodeProviderError,
		model.ErrCodePaymentFailed:
		status = http.StatusBadGateway
	case model.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case model.ErrCodeUnauthorised:
		status = http.StatusUnauthorized
	}

	writeError(w, status, err.Code, err.Message, logger)
}

// asDomainError unwraps err to a *model.DomainError if one is present.
func asDomainError(err error) (*model.DomainError, bool) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
