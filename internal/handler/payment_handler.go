package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kart-pay/internal/checkout"
	"kart-pay/internal/model"
	"kart-pay/internal/provider"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// OrderCreator runs the provider create phase.
type OrderCreator interface {
	CreateOrder(ctx context.Context, checkout model.CheckoutContext, validate provider.ValidationHook) (*provider.Order, error)
}

// ApprovalService reconciles an approved provider order with the backend.
type ApprovalService interface {
	HandleApproval(ctx context.Context, checkout model.CheckoutContext, refs model.ProviderRefs) (*checkout.Outcome, error)
}

// CheckoutSeeder seeds the per-token order cache at attempt start.
type CheckoutSeeder interface {
	Begin(token string, order *model.OrderSnapshot)
}

// PaymentHandler handles the two-phase payment HTTP endpoints.
type PaymentHandler struct {
	creator       OrderCreator
	approvals     ApprovalService
	seeder        CheckoutSeeder
	validate      *validator.Validate
	providerReady bool
	logger        zerolog.Logger
}

// NewPaymentHandler creates a payment handler. providerReady reflects
// whether real provider credentials are configured; when false both
// endpoints answer 503 without touching the provider.
func NewPaymentHandler(
	creator OrderCreator,
	approvals ApprovalService,
	seeder CheckoutSeeder,
	validate *validator.Validate,
	providerReady bool,
	logger zerolog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		creator:       creator,
		approvals:     approvals,
		seeder:        seeder,
		validate:      validate,
		providerReady: providerReady,
		logger:        logger.With().Str("handler", "payment").Logger(),
	}
}

// CreateOrderRequest is the body for POST /api/payments/orders. The
// optional order snapshot seeds the checkout cache for later stock
// conflict recovery.
type CreateOrderRequest struct {
	model.CheckoutContext
	Order *model.OrderSnapshot `json:"order,omitempty"`
}

// CaptureRequest is the body for POST /api/payments/orders/{id}/capture.
type CaptureRequest struct {
	model.CheckoutContext
	PayerID string `json:"payerID,omitempty"`
}

// stockConflictResponse carries the conflict discriminant plus everything
// the client needs to refresh its cart view.
type stockConflictResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Items   []model.UnavailableItem `json:"items"`
	Order   *model.OrderSnapshot    `json:"order,omitempty"`
}

// CreateOrder handles POST /api/payments/orders requests.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	if !h.providerReady {
		writeError(w, http.StatusServiceUnavailable, model.ErrCodeProviderError,
			"payment provider is not configured", h.logger)
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if h.seeder != nil && req.CheckoutToken != "" && req.Order != nil {
		h.seeder.Begin(req.CheckoutToken, req.Order)
	}

	order, err := h.creator.CreateOrder(r.Context(), req.CheckoutContext, h.validationHook())
	if err != nil {
		if domainErr, ok := asDomainError(err); ok {
			writeDomainError(w, domainErr, h.logger)
			return
		}
		writeError(w, http.StatusBadGateway, model.ErrCodeProviderError,
			model.ErrProviderFailure.Message, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Capture handles POST /api/payments/orders/{id}/capture requests.
func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	if !h.providerReady {
		writeError(w, http.StatusServiceUnavailable, model.ErrCodeProviderError,
			"payment provider is not configured", h.logger)
		return
	}

	providerOrderID := captureOrderID(r.URL.Path)
	if providerOrderID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "provider order ID is required", h.logger)
		return
	}

	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	refs := model.ProviderRefs{
		OrderID: providerOrderID,
		PayerID: req.PayerID,
	}

	outcome, err := h.approvals.HandleApproval(r.Context(), req.CheckoutContext, refs)
	if err != nil {
		var conflict *model.StockConflictError
		if errors.As(err, &conflict) {
			writeJSON(w, http.StatusConflict, stockConflictResponse{
				Error:   model.ErrCodeStockConflict,
				Message: conflict.Error(),
				Items:   conflict.Items,
				Order:   conflict.Order,
			})
			return
		}
		if domainErr, ok := asDomainError(err); ok {
			writeDomainError(w, domainErr, h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError,
			"failed to process payment", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// validationHook adapts struct-tag validation into the adapter's
// pre-creation check.
func (h *PaymentHandler) validationHook() provider.ValidationHook {
	if h.validate == nil {
		return nil
	}
	return func(checkout model.CheckoutContext) bool {
		return h.validate.Struct(checkout) == nil
	}
}

// captureOrderID extracts {id} from /api/payments/orders/{id}/capture.
func captureOrderID(path string) string {
	const prefix = "/api/payments/orders/"
	const suffix = "/capture"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}

	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
