package checkout

import (
	"context"

	"kart-pay/internal/model"
	"kart-pay/internal/provider"
)

// Cart is the cart collaborator. Clear is called exactly once when a
// charge is confirmed.
type Cart interface {
	Clear(ctx context.Context, token string) error
}

// Tracker is the purchase-tracking collaborator. TrackPurchase is called
// exactly once on confirmed success, never on failure or conflict.
type Tracker interface {
	TrackPurchase(e PurchaseEvent)
}

// CompletedOrderStore persists the record the confirmation view reads.
type CompletedOrderStore interface {
	Save(ctx context.Context, order *model.CompletedOrder) error
}

// DiscountValidator decides whether a caller-supplied discount code may be
// forwarded to the backend.
type DiscountValidator interface {
	Validate(ctx context.Context, code string) error
}

// CaptureProvider is the capture half of the provider order protocol.
type CaptureProvider interface {
	Capture(ctx context.Context, providerOrderID string) (*provider.CaptureResult, error)
}

// PurchaseEvent is the tracking payload emitted on a confirmed purchase.
// Monetary values are in major units.
type PurchaseEvent struct {
	OrderID      string
	ValueMajor   float64
	Currency     string
	Products     []TrackedProduct
	CustomParams map[string]string
}

// TrackedProduct is one product record within a purchase event.
type TrackedProduct struct {
	ID         string
	Title      string
	PriceMajor float64
	Category   string
	VariantID  string
}

// NewTrackedProduct builds the tracking product record for a payment item.
func NewTrackedProduct(item model.PaymentItem) TrackedProduct {
	return TrackedProduct{
		ID:         item.ProductID,
		Title:      item.DisplayName,
		PriceMajor: item.UnitPriceMajor,
		Category:   "product",
		VariantID:  item.VariantID,
	}
}
