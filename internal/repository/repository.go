package repository

import (
	"context"

	"kart-pay/internal/model"
)

// CompletedOrderRepository defines data access for completed payment records.
type CompletedOrderRepository interface {
	// Save persists a completed order. Saving the same order ID again
	// replaces the previous record.
	Save(ctx context.Context, order *model.CompletedOrder) error

	// GetByOrderID retrieves a completed order by the store's order ID.
	// Returns model.ErrOrderNotFound when no record exists.
	GetByOrderID(ctx context.Context, orderID string) (*model.CompletedOrder, error)
}
