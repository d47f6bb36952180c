// Package cart holds the in-progress cart per checkout token. The payment
// flow depends on it only to clear the cart once a charge is confirmed.
package cart

import (
	"context"
	"sync"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
)

// Store is an in-memory session cart keyed by checkout token. Safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	items  map[string][]model.CartLineItem
	logger zerolog.Logger
}

// NewStore creates an empty cart store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		items:  make(map[string][]model.CartLineItem),
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

// Put replaces the cart contents for a checkout token.
func (s *Store) Put(token string, items []model.CartLineItem) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[token] = items
}

// Get returns the cart contents for a checkout token, nil when unknown.
func (s *Store) Get(token string) []model.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[token]
}

// Clear empties the cart for a checkout token. Called once when the
// payment attempt is confirmed.
func (s *Store) Clear(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)

	s.logger.Debug().Str("checkout_token", token).Msg("cart cleared")
	return nil
}
