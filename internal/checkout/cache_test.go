package checkout

import (
	"fmt"
	"sync"
	"testing"

	"kart-pay/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateCache_BeginSeedsBothViews(t *testing.T) {
	cache := NewStateCache()
	order := &model.OrderSnapshot{ID: "ord-1", TotalAmount: 1000}

	cache.Begin("tok-1", order)

	assert.Equal(t, order, cache.Snapshot("tok-1"))
	assert.Equal(t, order, cache.FreshOrder("tok-1"))
}

func TestStateCache_UpdateOrderOnlyMovesFreshState(t *testing.T) {
	cache := NewStateCache()
	initial := &model.OrderSnapshot{ID: "ord-1", TotalAmount: 1000}
	refreshed := &model.OrderSnapshot{ID: "ord-1", TotalAmount: 800}

	cache.Begin("tok-1", initial)
	cache.UpdateOrder("tok-1", refreshed)

	assert.Equal(t, refreshed, cache.FreshOrder("tok-1"))
	// The begin-time snapshot is untouched.
	assert.Equal(t, initial, cache.Snapshot("tok-1"))
}

func TestStateCache_UnknownTokenReturnsNil(t *testing.T) {
	cache := NewStateCache()

	assert.Nil(t, cache.FreshOrder("missing"))
	assert.Nil(t, cache.Snapshot("missing"))
}

func TestStateCache_IgnoresEmptyTokenAndNilOrder(t *testing.T) {
	cache := NewStateCache()

	cache.Begin("", &model.OrderSnapshot{ID: "ord-1"})
	cache.UpdateOrder("tok-1", nil)

	assert.Nil(t, cache.FreshOrder(""))
	assert.Nil(t, cache.FreshOrder("tok-1"))
}

func TestStateCache_Discard(t *testing.T) {
	cache := NewStateCache()
	cache.Begin("tok-1", &model.OrderSnapshot{ID: "ord-1"})

	cache.Discard("tok-1")

	assert.Nil(t, cache.FreshOrder("tok-1"))
	assert.Nil(t, cache.Snapshot("tok-1"))
}

func TestStateCache_ConcurrentAccess(t *testing.T) {
	cache := NewStateCache()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("tok-%d", i%5)
			cache.UpdateOrder(token, &model.OrderSnapshot{ID: token})
		}(i)
		go func(i int) {
			defer wg.Done()
			cache.FreshOrder(fmt.Sprintf("tok-%d", i%5))
		}(i)
	}
	wg.Wait()

	require.NotNil(t, cache.FreshOrder("tok-0"))
}
