package provider

import (
	"context"
	"fmt"
	"strings"

	"kart-pay/internal/model"
	"kart-pay/internal/payload"

	"github.com/rs/zerolog"
)

// ValidationHook is the externally supplied pre-creation check. When it
// returns false the order is never created and the caller surfaces a
// missing-required-fields message.
type ValidationHook func(model.CheckoutContext) bool

// Adapter validates preconditions and drives the provider order protocol.
type Adapter struct {
	client Client
	logger zerolog.Logger
}

// NewAdapter creates a provider order adapter.
func NewAdapter(client Client, logger zerolog.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: logger.With().Str("component", "provider-adapter").Logger(),
	}
}

// CreateOrder runs the create phase. Preconditions are checked in order:
// the validation hook if present, then pickup-location presence when the
// delivery mode is pickup. Only then is the provider order created, with
// the charge amount as a two-decimal major-unit string and the currency
// uppercased.
func (a *Adapter) CreateOrder(ctx context.Context, checkout model.CheckoutContext, validate ValidationHook) (*Order, error) {
	if validate != nil && !validate(checkout) {
		a.logger.Warn().
			Str("order_id", checkout.OrderID).
			Msg("checkout validation hook rejected order creation")
		return nil, model.ErrValidationRequired
	}

	if checkout.PickupMode() && len(checkout.PickupLocations) == 0 {
		a.logger.Warn().
			Str("order_id", checkout.OrderID).
			Msg("pickup mode selected without a pickup location")
		return nil, model.ErrPickupRequired
	}

	currency := checkout.Currency
	if currency == "" {
		currency = payload.DefaultCurrency
	}

	req := &OrderRequest{
		Intent: IntentCapture,
		PurchaseUnits: []PurchaseUnit{
			{
				Amount: Amount{
					Value:        payload.MinorToMajorString(payload.ClampMinor(checkout.AmountMinor.Float64())),
					CurrencyCode: strings.ToUpper(currency),
				},
				Description: payload.Description(checkout.Description, checkout.OrderID),
			},
		},
	}

	order, err := a.client.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("provider order creation failed: %w", err)
	}

	a.logger.Info().
		Str("provider_order_id", order.ID).
		Str("order_id", checkout.OrderID).
		Str("amount", req.PurchaseUnits[0].Amount.Value).
		Msg("provider order created")

	return order, nil
}

// Capture runs the capture phase for an approved provider order. The
// provider order state is discarded after this call either way.
func (a *Adapter) Capture(ctx context.Context, providerOrderID string) (*CaptureResult, error) {
	result, err := a.client.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("provider_order_id", providerOrderID).
			Msg("provider capture failed")
		return nil, fmt.Errorf("provider capture failed: %w", err)
	}

	a.logger.Info().
		Str("provider_order_id", result.ID).
		Str("status", result.Status).
		Msg("provider capture completed")

	return result, nil
}
