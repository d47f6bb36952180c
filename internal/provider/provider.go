// Package provider drives the external payment provider's two-phase order
// protocol: create before funds are reserved, capture after the buyer
// approves. Order state is transient and owned here for the duration of one
// create-to-capture cycle; nothing is persisted.
package provider

import (
	"context"
	"encoding/json"
)

// OrderRequest is the provider order-creation payload.
type OrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

// PurchaseUnit describes one charge within a provider order.
type PurchaseUnit struct {
	Amount      Amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Amount is a major-unit amount as the provider expects it: a two-decimal
// string plus an uppercase currency code.
type Amount struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

// IntentCapture requests funds be captured immediately after approval.
const IntentCapture = "CAPTURE"

// Order is the provider-order descriptor returned by the create phase.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Payer identifies the approving buyer on a capture result.
type Payer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address,omitempty"`
}

// CaptureResult is the provider's capture response. Raw preserves the full
// provider payload for the completed-order record.
type CaptureResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  Payer  `json:"payer"`

	Raw json.RawMessage `json:"-"`
}

// Client abstracts the provider's order API.
type Client interface {
	// CreateOrder creates a provider order and returns its descriptor.
	CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error)

	// CaptureOrder finalizes fund transfer for an approved order.
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)
}
