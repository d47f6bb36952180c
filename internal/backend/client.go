// Package backend submits charge requests to the order-processing backend
// and decodes its structured responses. The backend error contract is
// typed: a JSON body with a "kind" discriminant, never a message with an
// embedded JSON fragment.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
)

// Error kinds on the backend charge contract.
const (
	KindStockConflict = "stock_conflict"
	KindGeneric       = "generic"
)

// ChargeResponse is the backend's acceptance body. Order fields may arrive
// nested under "order" or flat on the response.
type ChargeResponse struct {
	OrderID        string               `json:"order_id,omitempty"`
	CheckoutToken  string               `json:"checkout_token,omitempty"`
	CurrencyCode   string               `json:"currency_code,omitempty"`
	Subtotal       int64                `json:"subtotal,omitempty"`
	DiscountAmount int64                `json:"discount_amount,omitempty"`
	TotalAmount    int64                `json:"total_amount,omitempty"`
	OrderItems     []model.CartLineItem `json:"order_items,omitempty"`
	Order          *model.OrderSnapshot `json:"order,omitempty"`
}

// errorBody is the backend's rejection body.
type errorBody struct {
	Kind             string                  `json:"kind"`
	Message          string                  `json:"message"`
	UnavailableItems []model.UnavailableItem `json:"unavailable_items,omitempty"`

	// Authoritative order state, nested or flat, used to refresh the
	// checkout cache on a stock conflict.
	Order          *model.OrderSnapshot `json:"order,omitempty"`
	OrderID        string               `json:"order_id,omitempty"`
	CheckoutToken  string               `json:"checkout_token,omitempty"`
	CurrencyCode   string               `json:"currency_code,omitempty"`
	Subtotal       int64                `json:"subtotal,omitempty"`
	DiscountAmount int64                `json:"discount_amount,omitempty"`
	TotalAmount    int64                `json:"total_amount,omitempty"`
	OrderItems     []model.CartLineItem `json:"order_items,omitempty"`
}

// Submitter abstracts the charge submission for the reconciliation
// controller.
type Submitter interface {
	// SubmitCharge posts one charge request. A stock-conflict rejection is
	// returned as *model.StockConflictError; any other rejection or an
	// unparseable body is a generic error.
	SubmitCharge(ctx context.Context, req *model.ChargeRequest) (*ChargeResponse, error)
}

// client implements Submitter over HTTP.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a backend charge client.
func NewClient(baseURL, apiKey string, logger zerolog.Logger) Submitter {
	return &client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With().Str("component", "backend-client").Logger(),
	}
}

// SubmitCharge posts the charge request to the backend charge endpoint.
func (c *client) SubmitCharge(ctx context.Context, req *model.ChargeRequest) (*ChargeResponse, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/charges", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("charge submission failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read charge response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out ChargeResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("failed to decode charge response: %w", err)
		}
		c.logger.Info().
			Str("order_id", req.OrderID).
			Int64("amount", req.Amount).
			Msg("charge accepted by backend")
		return &out, nil
	}

	return nil, c.rejectionError(req, resp.StatusCode, body)
}

// rejectionError maps a non-2xx response to a typed error. Anything that
// is not a well-formed stock conflict is generic.
func (c *client) rejectionError(req *model.ChargeRequest, status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		c.logger.Warn().
			Int("status", status).
			Msg("backend rejection body did not parse")
		return fmt.Errorf("backend returned status %d", status)
	}

	if eb.Kind == KindStockConflict && len(eb.UnavailableItems) > 0 {
		c.logger.Warn().
			Str("order_id", req.OrderID).
			Int("unavailable_count", len(eb.UnavailableItems)).
			Msg("backend reported stock conflict")
		return &model.StockConflictError{
			Items: eb.UnavailableItems,
			Order: eb.orderSnapshot(req),
		}
	}

	c.logger.Warn().
		Int("status", status).
		Str("kind", eb.Kind).
		Str("message", eb.Message).
		Msg("backend rejected charge")

	if eb.Message != "" {
		return fmt.Errorf("backend rejected charge: %s", eb.Message)
	}
	return fmt.Errorf("backend returned status %d", status)
}

// orderSnapshot returns the backend's order representation, or synthesizes
// one from the flat response fields so the caller always has authoritative
// state to cache. Identifiers missing from the response fall back to the
// submitted request.
func (eb *errorBody) orderSnapshot(req *model.ChargeRequest) *model.OrderSnapshot {
	if eb.Order != nil {
		return eb.Order
	}

	id := eb.OrderID
	if id == "" {
		id = req.OrderID
	}
	token := eb.CheckoutToken
	if token == "" {
		token = req.CheckoutToken
	}
	items := eb.OrderItems
	if items == nil {
		items = []model.CartLineItem{}
	}

	return &model.OrderSnapshot{
		ID:             id,
		StoreID:        req.StoreID,
		CheckoutToken:  token,
		CurrencyCode:   eb.CurrencyCode,
		Subtotal:       eb.Subtotal,
		DiscountAmount: eb.DiscountAmount,
		TotalAmount:    eb.TotalAmount,
		OrderItems:     items,
	}
}
