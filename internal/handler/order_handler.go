package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
)

// CompletedOrderGetter retrieves persisted completed payment records.
type CompletedOrderGetter interface {
	GetByOrderID(ctx context.Context, orderID string) (*model.CompletedOrder, error)
}

// OrderHandler serves the confirmation view's completed order lookup.
type OrderHandler struct {
	orders CompletedOrderGetter
	logger zerolog.Logger
}

// NewOrderHandler creates a completed order handler.
func NewOrderHandler(orders CompletedOrderGetter, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// GetCompleted handles GET /api/orders/{id}/completed requests.
func (h *OrderHandler) GetCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	orderID := completedOrderID(r.URL.Path)
	if orderID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "order ID is required", h.logger)
		return
	}

	order, err := h.orders.GetByOrderID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, model.ErrCodeOrderNotFound,
				model.ErrOrderNotFound.Message, h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError,
			"failed to retrieve order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// completedOrderID extracts {id} from /api/orders/{id}/completed.
func completedOrderID(path string) string {
	const prefix = "/api/orders/"
	const suffix = "/completed"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}

	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
