package model

import (
	"encoding/json"
	"time"
)

// ChargeRequest is the canonical backend charge payload. All monetary
// fields are non-negative integers in minor currency units.
type ChargeRequest struct {
	StoreID       string            `json:"store_id"`
	OrderID       string            `json:"order_id,omitempty"`
	CheckoutToken string            `json:"checkout_token,omitempty"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	ExpectedTotal int64             `json:"expected_total"`
	DeliveryFee   int64             `json:"delivery_fee"`
	Description   string            `json:"description"`
	Metadata      map[string]string `json:"metadata"`
	ReceiptEmail  string            `json:"receipt_email,omitempty"`
	Customer      Customer          `json:"customer"`

	ValidationData ValidationData `json:"validation_data"`

	// Delivery is a single chosen method: either the pickup block or the
	// delivery-expectations block is present, never both.
	DeliveryMethod       string                `json:"delivery_method,omitempty"`
	PickupLocations      []PickupLocation      `json:"pickup_locations,omitempty"`
	DeliveryExpectations []DeliveryExpectation `json:"delivery_expectations,omitempty"`
}

// Customer is the buyer contact block of a charge request.
type Customer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ValidationData carries the addresses and items the backend revalidates
// against its own order draft before accepting the charge.
type ValidationData struct {
	ShippingAddress *Address         `json:"shipping_address"`
	BillingAddress  *Address         `json:"billing_address"`
	Items           []ValidationItem `json:"items"`
	DiscountCode    string           `json:"discount_code,omitempty"`
}

// Address is a normalized postal address. Missing components default to
// empty strings; Name is the trimmed "first last" concatenation.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Name       string `json:"name"`
}

// AddressInput is a raw address as supplied by the checkout context.
type AddressInput struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// ValidationItem is a PaymentItem as serialized into validation_data,
// with the price converted to minor units.
type ValidationItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variant_id,omitempty"`
	Price     int64  `json:"price"`
}

// PickupLocation is a pickup point as emitted on the charge request.
type PickupLocation struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

// PickupLocationInput is a raw pickup point from the checkout context.
type PickupLocationInput struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Line1    string `json:"line1,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

// DeliveryExpectation is a delivery-expectation entry on the charge request.
type DeliveryExpectation struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	EstimatedDays string `json:"estimated_days,omitempty"`
}

// DeliveryExpectationInput is a raw delivery expectation from the checkout
// context. Type "pickup" switches the flow into pickup mode.
type DeliveryExpectationInput struct {
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       *Number `json:"price,omitempty"`
}

// DeliveryTypePickup marks a pickup delivery expectation.
const DeliveryTypePickup = "pickup"

// OrderSnapshot is the cached representation of the in-progress backend
// order. It is created when checkout begins, read at capture time as the
// fallback item source, and overwritten when the backend reports a stock
// conflict.
type OrderSnapshot struct {
	ID             string         `json:"id"`
	StoreID        string         `json:"store_id"`
	CheckoutToken  string         `json:"checkout_token"`
	CurrencyCode   string         `json:"currency_code"`
	Subtotal       int64          `json:"subtotal"`
	DiscountAmount int64          `json:"discount_amount"`
	TotalAmount    int64          `json:"total_amount"`
	OrderItems     []CartLineItem `json:"order_items"`
}

// CompletedOrder is the durable record written once a charge is confirmed,
// read back by the confirmation view.
type CompletedOrder struct {
	OrderID         string          `json:"order_id" db:"order_id"`
	ProviderOrderID string          `json:"provider_order_id" db:"provider_order_id"`
	PayerID         string          `json:"payer_id" db:"payer_id"`
	AmountMinor     int64           `json:"amount" db:"amount"`
	Currency        string          `json:"currency" db:"currency"`
	CaptureDetails  json.RawMessage `json:"capture_details" db:"capture_details"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
