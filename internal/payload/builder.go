// Package payload assembles the canonical backend charge request from
// deduplicated payment items plus checkout context.
package payload

import (
	"fmt"
	"math"
	"strings"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the fixed payment-method tag stamped on every charge.
const PaymentMethod = "paypal"

// DefaultCurrency is used when the checkout context supplies no currency.
const DefaultCurrency = "mxn"

// metadataDiscountKey is the caller metadata key carrying a discount code.
const metadataDiscountKey = "discount_code"

// Builder assembles ChargeRequests for a single store.
type Builder struct {
	storeID string
	logger  zerolog.Logger
}

// NewBuilder creates a new payload builder.
func NewBuilder(storeID string, logger zerolog.Logger) *Builder {
	return &Builder{
		storeID: storeID,
		logger:  logger.With().Str("component", "payload-builder").Logger(),
	}
}

// Build produces the charge request for one payment attempt. The requested
// amount is floored and clamped to a non-negative integer in minor units
// and is authoritative regardless of any client-computed subtotal.
func (b *Builder) Build(ctx model.CheckoutContext, items []model.PaymentItem, refs model.ProviderRefs) *model.ChargeRequest {
	totalMinor := ClampMinor(ctx.AmountMinor.Float64())

	expected := ClampMinor(ctx.ExpectedTotal.Float64())
	if expected == 0 {
		// Caller did not track its own total independently; fall back to
		// the computed amount.
		expected = totalMinor
	}

	req := &model.ChargeRequest{
		StoreID:       b.storeID,
		OrderID:       ctx.OrderID,
		CheckoutToken: ctx.CheckoutToken,
		Amount:        totalMinor,
		Currency:      currencyOrDefault(ctx.Currency),
		ExpectedTotal: expected,
		DeliveryFee:   ClampMinor(ctx.DeliveryFee.Float64()),
		Description:   Description(ctx.Description, ctx.OrderID),
		Metadata:      b.metadata(ctx, refs),
		ReceiptEmail:  ctx.Email,
		Customer: model.Customer{
			Email: ctx.Email,
			Name:  ctx.Name,
			Phone: ctx.Phone,
		},
		ValidationData: model.ValidationData{
			ShippingAddress: normalizeAddress(ctx.ShippingAddress),
			BillingAddress:  normalizeAddress(ctx.BillingAddress),
			Items:           validationItems(items),
			DiscountCode:    ctx.Metadata[metadataDiscountKey],
		},
	}

	b.applyDeliveryMethod(req, ctx)

	b.logger.Debug().
		Str("order_id", req.OrderID).
		Int64("amount", req.Amount).
		Int("item_count", len(req.ValidationData.Items)).
		Msg("charge request built")

	return req
}

// applyDeliveryMethod emits exactly one of the pickup block or the
// delivery-expectations block. The backend charge record models delivery
// as a single chosen method, so this is a strict either/or.
func (b *Builder) applyDeliveryMethod(req *model.ChargeRequest, ctx model.CheckoutContext) {
	if len(ctx.PickupLocations) == 1 {
		req.DeliveryMethod = model.DeliveryTypePickup
		req.PickupLocations = pickupLocations(ctx.PickupLocations)
		return
	}

	if len(ctx.DeliveryExpectations) > 0 && ctx.DeliveryExpectations[0].Type != model.DeliveryTypePickup {
		req.DeliveryExpectations = deliveryExpectations(ctx.DeliveryExpectations)
	}
}

// metadata always includes the order identifier, the payment-method tag
// and the provider transaction identifiers; caller-supplied entries are
// merged on top and may override any of them.
func (b *Builder) metadata(ctx model.CheckoutContext, refs model.ProviderRefs) map[string]string {
	md := map[string]string{
		"order_id":        ctx.OrderID,
		"payment_method":  PaymentMethod,
		"paypal_order_id": refs.OrderID,
		"paypal_payer_id": refs.PayerID,
	}
	for k, v := range ctx.Metadata {
		md[k] = v
	}
	return md
}

// validationItems converts payment items into validation_data entries with
// prices in minor units.
func validationItems(items []model.PaymentItem) []model.ValidationItem {
	out := make([]model.ValidationItem, len(items))
	for i, it := range items {
		out[i] = model.ValidationItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			VariantID: it.VariantID,
			Price:     MajorToMinor(it.UnitPriceMajor),
		}
	}
	return out
}

// normalizeAddress returns nil for a nil input, otherwise a record with
// every component defaulted to the empty string and a display name built
// by trimming the concatenation of first and last name.
func normalizeAddress(in *model.AddressInput) *model.Address {
	if in == nil {
		return nil
	}
	return &model.Address{
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Name:       strings.TrimSpace(in.FirstName + " " + in.LastName),
	}
}

func pickupLocations(in []model.PickupLocationInput) []model.PickupLocation {
	out := make([]model.PickupLocation, len(in))
	for i, loc := range in {
		id := loc.ID
		if id == "" {
			id = loc.Name
		}
		out[i] = model.PickupLocation{
			ID:      id,
			Name:    loc.Name,
			Address: fmt.Sprintf("%s, %s, %s, %s", loc.Line1, loc.City, loc.State, loc.Country),
			Hours:   loc.Schedule,
		}
	}
	return out
}

func deliveryExpectations(in []model.DeliveryExpectationInput) []model.DeliveryExpectation {
	out := make([]model.DeliveryExpectation, len(in))
	for i, exp := range in {
		typ := exp.Type
		if typ == "" {
			typ = "standard_delivery"
		}
		out[i] = model.DeliveryExpectation{
			Type:        typ,
			Description: exp.Description,
		}
		if exp.Price != nil {
			out[i].EstimatedDays = "3-5"
		}
	}
	return out
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// Description returns the free-text charge description, defaulting to an
// order reference when the checkout supplies none.
func Description(description, orderID string) string {
	if description != "" {
		return description
	}
	if orderID == "" {
		orderID = "n/a"
	}
	return fmt.Sprintf("Order #%s", orderID)
}

// ClampMinor floors a requested minor-unit amount and clamps it to zero.
// Financial amounts are always non-negative integers in minor units,
// never floating currency values.
func ClampMinor(amount float64) int64 {
	v := int64(math.Floor(amount))
	if v < 0 {
		return 0
	}
	return v
}

// MajorToMinor converts a major-unit price to minor units by rounding,
// clamped to zero.
func MajorToMinor(major float64) int64 {
	v := decimal.NewFromFloat(major).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if v < 0 {
		return 0
	}
	return v
}

// MinorToMajor converts a minor-unit amount to major units.
func MinorToMajor(minor int64) float64 {
	f, _ := decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).Float64()
	return f
}

// MinorToMajorString renders a minor-unit amount as a two-decimal
// major-unit string, the format the provider order API expects.
func MinorToMajorString(minor int64) string {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).StringFixed(2)
}
