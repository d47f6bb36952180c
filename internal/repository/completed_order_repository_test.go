package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"kart-pay/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and returns a connected pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	createCompletedOrderSchema(t, pool)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createCompletedOrderSchema creates the completed_orders table for testing.
func createCompletedOrderSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	schema := `
		CREATE TABLE IF NOT EXISTS completed_orders (
			order_id TEXT PRIMARY KEY,
			provider_order_id TEXT NOT NULL,
			payer_id TEXT,
			amount BIGINT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			capture_details JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	_, err := pool.Exec(context.Background(), schema)
	require.NoError(t, err)
}

func testCompletedOrder() *model.CompletedOrder {
	return &model.CompletedOrder{
		OrderID:         "order-123",
		ProviderOrderID: "PAY-9XJ12345",
		PayerID:         "PAYER-77",
		AmountMinor:     45990,
		Currency:        "mxn",
		CaptureDetails:  json.RawMessage(`{"id":"PAY-9XJ12345","status":"COMPLETED"}`),
	}
}

func TestCompletedOrderRepository_SaveAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCompletedOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := testCompletedOrder()
	require.NoError(t, repo.Save(ctx, order))

	// Save fills CreatedAt when the caller leaves it zero
	assert.False(t, order.CreatedAt.IsZero())

	got, err := repo.GetByOrderID(ctx, "order-123")
	require.NoError(t, err)

	assert.Equal(t, order.OrderID, got.OrderID)
	assert.Equal(t, order.ProviderOrderID, got.ProviderOrderID)
	assert.Equal(t, order.PayerID, got.PayerID)
	assert.Equal(t, order.AmountMinor, got.AmountMinor)
	assert.Equal(t, order.Currency, got.Currency)
	assert.JSONEq(t, string(order.CaptureDetails), string(got.CaptureDetails))
}

func TestCompletedOrderRepository_SaveIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCompletedOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := testCompletedOrder()
	require.NoError(t, repo.Save(ctx, order))

	// A second save for the same order replaces the record
	order.PayerID = "PAYER-88"
	order.AmountMinor = 46990
	require.NoError(t, repo.Save(ctx, order))

	got, err := repo.GetByOrderID(ctx, "order-123")
	require.NoError(t, err)
	assert.Equal(t, "PAYER-88", got.PayerID)
	assert.Equal(t, int64(46990), got.AmountMinor)
}

func TestCompletedOrderRepository_GetByOrderID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCompletedOrderRepository(pool, zerolog.Nop())

	got, err := repo.GetByOrderID(context.Background(), "no-such-order")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}
