// Package checkout orchestrates one payment attempt: capture, item
// normalization, charge submission, and success or conflict handling.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"kart-pay/internal/backend"
	"kart-pay/internal/model"
	"kart-pay/internal/normalize"
	"kart-pay/internal/payload"
	"kart-pay/internal/provider"

	"github.com/rs/zerolog"
)

// metadataDiscountKey mirrors the caller metadata key the payload builder
// forwards into validation_data.
const metadataDiscountKey = "discount_code"

// Outcome is the settled result of a successful payment attempt.
type Outcome struct {
	Status          Status `json:"status"`
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
	AmountMinor     int64  `json:"amount"`
	Currency        string `json:"currency"`
	RedirectPath    string `json:"redirect_path"`
	Notice          string `json:"notice"`
}

// Service is the reconciliation controller. It drives a single attempt
// from Idle through Submitting to Succeeded, StockConflict, or Failed;
// each suspension point (provider capture, backend submission) is awaited
// in sequence, never concurrently.
type Service struct {
	cache     OrderCache
	builder   *payload.Builder
	provider  CaptureProvider
	backend   backend.Submitter
	cart      Cart
	tracker   Tracker
	store     CompletedOrderStore
	discounts DiscountValidator
	logger    zerolog.Logger

	// in-flight guard: while an attempt key is present, re-entrant
	// approval calls are rejected without a second backend submission.
	mu       sync.Mutex
	inFlight map[string]struct{}
	statuses map[string]Status
}

// NewService creates a reconciliation controller. The cache is an explicit
// dependency so the controller is testable without any shared globals.
func NewService(
	cache OrderCache,
	builder *payload.Builder,
	capture CaptureProvider,
	submitter backend.Submitter,
	cart Cart,
	tracker Tracker,
	store CompletedOrderStore,
	discounts DiscountValidator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		cache:     cache,
		builder:   builder,
		provider:  capture,
		backend:   submitter,
		cart:      cart,
		tracker:   tracker,
		store:     store,
		discounts: discounts,
		logger:    logger.With().Str("service", "checkout").Logger(),
		inFlight:  make(map[string]struct{}),
		statuses:  make(map[string]Status),
	}
}

// HandleApproval runs the capture phase for an approved provider order and
// reconciles the result with the backend. Every error is returned typed:
// *model.DomainError for provider and generic failures,
// *model.StockConflictError for recoverable stock conflicts. The in-flight
// state is cleared on every exit path.
func (s *Service) HandleApproval(ctx context.Context, checkout model.CheckoutContext, refs model.ProviderRefs) (*Outcome, error) {
	key := attemptKey(checkout, refs)
	if !s.begin(key) {
		s.logger.Warn().
			Str("attempt", key).
			Msg("approval rejected, payment already in flight")
		return nil, model.ErrPaymentInFlight
	}

	status := StatusFailed
	defer func() { s.finish(key, status) }()

	capture, err := s.provider.Capture(ctx, refs.OrderID)
	if err != nil {
		// Provider-side failure: no backend call is made.
		s.logger.Error().
			Err(err).
			Str("provider_order_id", refs.OrderID).
			Msg("provider capture failed")
		return nil, model.ErrProviderFailure
	}

	items := s.paymentItems(checkout)
	checkout = s.gateDiscount(ctx, checkout)

	req := s.builder.Build(checkout, items, refs)

	resp, err := s.backend.SubmitCharge(ctx, req)
	if err != nil {
		var conflict *model.StockConflictError
		if errors.As(err, &conflict) {
			// Recoverable: refresh the cached order so the UI shows the
			// authoritative state, then stop. The user edits the cart and
			// retries; no automatic retry here.
			s.cache.UpdateOrder(checkout.CheckoutToken, conflict.Order)
			s.logger.Warn().
				Str("order_id", req.OrderID).
				Int("unavailable_count", len(conflict.Items)).
				Msg("stock conflict, order cache refreshed")
			status = StatusStockConflict
			return nil, conflict
		}

		s.logger.Error().
			Err(err).
			Str("order_id", req.OrderID).
			Msg("backend rejected charge")
		return nil, model.ErrPaymentFailed
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = resp.OrderID
	}

	s.completeSuccess(ctx, checkout, items, req, refs, capture, orderID)
	status = StatusSucceeded

	return &Outcome{
		Status:          StatusSucceeded,
		OrderID:         orderID,
		ProviderOrderID: refs.OrderID,
		AmountMinor:     req.Amount,
		Currency:        req.Currency,
		RedirectPath:    "/thank-you/" + orderID,
		Notice:          "Payment successful! Your purchase has been processed.",
	}, nil
}

// Status reports the state of an attempt key; untouched keys are Idle.
func (s *Service) Status(key string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.statuses[key]; ok {
		return st
	}
	return StatusIdle
}

// paymentItems selects the item source (the explicit list when non-empty,
// else the freshest cached order, else the checkout snapshot) and returns
// the normalized, deduplicated payment items.
func (s *Service) paymentItems(checkout model.CheckoutContext) []model.PaymentItem {
	raw := checkout.Items
	if len(raw) == 0 {
		source := s.cache.FreshOrder(checkout.CheckoutToken)
		if source == nil {
			source = s.cache.Snapshot(checkout.CheckoutToken)
		}
		if source != nil {
			raw = source.OrderItems
		}
	}
	return normalize.Payable(normalize.Items(raw))
}

// gateDiscount drops an unrecognized discount code from the metadata so it
// never reaches validation_data. Registry problems are logged and the code
// passes through: availability over strictness.
func (s *Service) gateDiscount(ctx context.Context, checkout model.CheckoutContext) model.CheckoutContext {
	code := checkout.Metadata[metadataDiscountKey]
	if code == "" || s.discounts == nil {
		return checkout
	}

	if err := s.discounts.Validate(ctx, code); err != nil {
		s.logger.Warn().
			Err(err).
			Str("discount_code", code).
			Msg("dropping unrecognized discount code")
		md := make(map[string]string, len(checkout.Metadata))
		for k, v := range checkout.Metadata {
			if k == metadataDiscountKey {
				continue
			}
			md[k] = v
		}
		checkout.Metadata = md
	}
	return checkout
}

// completeSuccess runs the confirmed-success side effects: one tracking
// event, one cart clear, the durable completed-order record, and cache
// teardown. None of these failures can undo a captured payment, so they
// are logged and the success stands.
func (s *Service) completeSuccess(
	ctx context.Context,
	checkout model.CheckoutContext,
	items []model.PaymentItem,
	req *model.ChargeRequest,
	refs model.ProviderRefs,
	capture *provider.CaptureResult,
	orderID string,
) {
	products := make([]TrackedProduct, len(items))
	for i, it := range items {
		products[i] = NewTrackedProduct(it)
	}

	s.tracker.TrackPurchase(PurchaseEvent{
		OrderID:    orderID,
		ValueMajor: payload.MinorToMajor(req.Amount),
		Currency:   req.Currency,
		Products:   products,
		CustomParams: map[string]string{
			"payment_method":  payload.PaymentMethod,
			"checkout_token":  checkout.CheckoutToken,
			"paypal_order_id": refs.OrderID,
		},
	})

	if err := s.cart.Clear(ctx, checkout.CheckoutToken); err != nil {
		s.logger.Error().
			Err(err).
			Str("checkout_token", checkout.CheckoutToken).
			Msg("failed to clear cart after successful payment")
	}

	payerID := capture.Payer.PayerID
	if payerID == "" {
		payerID = refs.PayerID
	}
	record := &model.CompletedOrder{
		OrderID:         orderID,
		ProviderOrderID: refs.OrderID,
		PayerID:         payerID,
		AmountMinor:     req.Amount,
		Currency:        req.Currency,
		CaptureDetails:  capture.Raw,
		CreatedAt:       time.Now(),
	}
	if err := s.store.Save(ctx, record); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID).
			Msg("failed to persist completed order")
	}

	s.cache.Discard(checkout.CheckoutToken)

	s.logger.Info().
		Str("order_id", orderID).
		Str("provider_order_id", refs.OrderID).
		Int64("amount", req.Amount).
		Msg("payment reconciled successfully")
}

// begin marks an attempt in flight; false means one is already pending.
func (s *Service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	s.statuses[key] = StatusSubmitting
	return true
}

// finish clears the in-flight flag and records the terminal status.
func (s *Service) finish(key string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
	s.statuses[key] = status
}

// attemptKey identifies one payment attempt for the in-flight guard.
func attemptKey(checkout model.CheckoutContext, refs model.ProviderRefs) string {
	if checkout.CheckoutToken != "" {
		return checkout.CheckoutToken
	}
	if checkout.OrderID != "" {
		return checkout.OrderID
	}
	return refs.OrderID
}
