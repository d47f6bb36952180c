package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kart-pay/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// completedOrderRepository implements CompletedOrderRepository using PostgreSQL.
type completedOrderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCompletedOrderRepository creates a PostgreSQL-backed completed order repository.
func NewCompletedOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) CompletedOrderRepository {
	return &completedOrderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "completed_order").Logger(),
	}
}

// Save persists a completed order, replacing any previous record for the
// same order ID. A capture retried after a network blip must not fail on a
// duplicate key.
func (r *completedOrderRepository) Save(ctx context.Context, order *model.CompletedOrder) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO completed_orders (order_id, provider_order_id, payer_id, amount, currency, capture_details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO UPDATE SET
			provider_order_id = EXCLUDED.provider_order_id,
			payer_id = EXCLUDED.payer_id,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			capture_details = EXCLUDED.capture_details
	`

	_, err := r.pool.Exec(ctx, query,
		order.OrderID,
		order.ProviderOrderID,
		order.PayerID,
		order.AmountMinor,
		order.Currency,
		order.CaptureDetails,
		order.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("failed to save completed order")
		return fmt.Errorf("failed to save completed order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.OrderID).
		Str("provider_order_id", order.ProviderOrderID).
		Msg("completed order saved")

	return nil
}

// GetByOrderID retrieves a completed order by the store's order ID.
func (r *completedOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*model.CompletedOrder, error) {
	query := `
		SELECT order_id, provider_order_id, payer_id, amount, currency, capture_details, created_at
		FROM completed_orders
		WHERE order_id = $1
	`

	var order model.CompletedOrder
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&order.OrderID,
		&order.ProviderOrderID,
		&order.PayerID,
		&order.AmountMinor,
		&order.Currency,
		&order.CaptureDetails,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", orderID).Msg("completed order not found")
			return nil, model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to query completed order")
		return nil, fmt.Errorf("failed to query completed order: %w", err)
	}

	return &order, nil
}
