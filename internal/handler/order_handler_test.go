package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderGetter is a mock implementation of CompletedOrderGetter.
type MockOrderGetter struct {
	mock.Mock
}

func (m *MockOrderGetter) GetByOrderID(ctx context.Context, orderID string) (*model.CompletedOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompletedOrder), args.Error(1)
}

func getCompleted(h *OrderHandler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.GetCompleted(rec, req)
	return rec
}

func TestOrderHandler_GetCompleted_Success(t *testing.T) {
	getter := new(MockOrderGetter)
	getter.On("GetByOrderID", mock.Anything, "order-1").Return(&model.CompletedOrder{
		OrderID:         "order-1",
		ProviderOrderID: "PAY-1",
		AmountMinor:     45990,
		Currency:        "mxn",
	}, nil)

	h := NewOrderHandler(getter, zerolog.Nop())
	rec := getCompleted(h, "/api/orders/order-1/completed")

	assert.Equal(t, http.StatusOK, rec.Code)

	var order model.CompletedOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "order-1", order.OrderID)
	assert.Equal(t, int64(45990), order.AmountMinor)
	getter.AssertExpectations(t)
}

func TestOrderHandler_GetCompleted_NotFound(t *testing.T) {
	getter := new(MockOrderGetter)
	getter.On("GetByOrderID", mock.Anything, "missing").Return(nil, model.ErrOrderNotFound)

	h := NewOrderHandler(getter, zerolog.Nop())
	rec := getCompleted(h, "/api/orders/missing/completed")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeOrderNotFound, resp.Error)
}

func TestOrderHandler_GetCompleted_RepositoryError(t *testing.T) {
	getter := new(MockOrderGetter)
	getter.On("GetByOrderID", mock.Anything, "order-1").Return(nil, assert.AnError)

	h := NewOrderHandler(getter, zerolog.Nop())
	rec := getCompleted(h, "/api/orders/order-1/completed")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOrderHandler_GetCompleted_BadPath(t *testing.T) {
	getter := new(MockOrderGetter)
	h := NewOrderHandler(getter, zerolog.Nop())

	tests := []string{
		"/api/orders//completed",
		"/api/orders/order-1",
		"/api/orders/order-1/items/completed",
	}

	for _, path := range tests {
		rec := getCompleted(h, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}

	getter.AssertNotCalled(t, "GetByOrderID", mock.Anything, mock.Anything)
}

func TestOrderHandler_GetCompleted_MethodNotAllowed(t *testing.T) {
	h := NewOrderHandler(new(MockOrderGetter), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/order-1/completed", nil)
	rec := httptest.NewRecorder()
	h.GetCompleted(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
