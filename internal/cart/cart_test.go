package cart

import (
	"context"
	"testing"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetClear(t *testing.T) {
	store := NewStore(zerolog.Nop())
	items := []model.CartLineItem{{ProductID: "P1", Quantity: 2}}

	store.Put("tok-1", items)
	got := store.Get("tok-1")
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0].ProductID)

	require.NoError(t, store.Clear(context.Background(), "tok-1"))
	assert.Nil(t, store.Get("tok-1"))
}

func TestStore_EmptyTokenIgnored(t *testing.T) {
	store := NewStore(zerolog.Nop())

	store.Put("", []model.CartLineItem{{ProductID: "P1"}})

	assert.Nil(t, store.Get(""))
}

func TestStore_ClearUnknownTokenIsNoError(t *testing.T) {
	store := NewStore(zerolog.Nop())
	assert.NoError(t, store.Clear(context.Background(), "missing"))
}
