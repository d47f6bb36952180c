package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// httpClient implements Client against the provider's REST order API.
// It is stateless: credentials ride on every request, nothing is cached.
type httpClient struct {
	baseURL  string
	clientID string
	secret   string
	http     *http.Client
	logger   zerolog.Logger
}

// NewHTTPClient creates a provider API client.
func NewHTTPClient(baseURL, clientID, secret string, logger zerolog.Logger) Client {
	return &httpClient{
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger.With().Str("component", "provider-client").Logger(),
	}
}

// CreateOrder creates a provider order.
func (c *httpClient) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	var order Order
	if err := c.post(ctx, "/v2/checkout/orders", req, &order); err != nil {
		return nil, fmt.Errorf("failed to create provider order: %w", err)
	}

	c.logger.Debug().
		Str("provider_order_id", order.ID).
		Str("status", order.Status).
		Msg("provider order created")

	return &order, nil
}

// CaptureOrder captures an approved provider order.
func (c *httpClient) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", orderID)

	body, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to capture provider order %s: %w", orderID, err)
	}

	var result CaptureResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode capture response: %w", err)
	}
	result.Raw = body

	c.logger.Debug().
		Str("provider_order_id", result.ID).
		Str("status", result.Status).
		Msg("provider order captured")

	return &result, nil
}

// post sends a JSON body and decodes the JSON response into out.
func (c *httpClient) post(ctx context.Context, path string, in, out any) error {
	body, err := c.do(ctx, http.MethodPost, path, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

// do executes one provider API request and returns the response body.
// Non-2xx responses become errors carrying the status and body.
func (c *httpClient) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.clientID, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("provider API error")
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
